package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
	if !strings.HasSuffix(dir, "townsquare") {
		t.Errorf("cacheDir() = %q, should end with 'townsquare'", dir)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := "/tmp/custom-cache"
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestArtifactPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{"single format uses output", "table.svg", []string{"svg"}, map[string]string{"svg": "table.svg"}},
		{"single format default name", "", []string{"png"}, map[string]string{"png": "townsquare.png"}},
		{"multiple formats share a base", "out/table.svg", []string{"svg", "dot"},
			map[string]string{"svg": "out/table.svg", "dot": "out/table.dot"}},
		{"multiple formats default base", "", []string{"json", "pdf"},
			map[string]string{"json": "townsquare.json", "pdf": "townsquare.pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := artifactPaths(tt.output, tt.formats)
			if len(got) != len(tt.want) {
				t.Fatalf("artifactPaths() = %v, want %v", got, tt.want)
			}
			for f, p := range tt.want {
				if got[f] != p {
					t.Errorf("artifactPaths()[%s] = %q, want %q", f, got[f], p)
				}
			}
		})
	}
}
