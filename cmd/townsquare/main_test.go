package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	terr "github.com/matzehuels/townsquare/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"interrupted", fmt.Errorf("compute layout: %w", context.Canceled), 130},
		{"bad input", terr.New(terr.ErrCodeInvalidInput, "no participants"), 2},
		{"bad viewport", fmt.Errorf("compute layout: %w", terr.New(terr.ErrCodeInvalidViewport, "too small")), 2},
		{"busy", terr.New(terr.ErrCodeLayoutBusy, "busy"), 1},
		{"plain", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
