package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/townsquare/internal/cli"
	terr "github.com/matzehuels/townsquare/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.New(os.Stderr, cli.LogInfo).RootCommand()
	os.Exit(exitCode(root.ExecuteContext(ctx)))
}

// exitCode maps a command error to the process status. Cobra has already
// printed the error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130 // interrupted, as a shell reports SIGINT
	case terr.Is(err, terr.ErrCodeInvalidInput), terr.Is(err, terr.ErrCodeInvalidConfig),
		terr.Is(err, terr.ErrCodeInvalidFormat), terr.Is(err, terr.ErrCodeInvalidViewport):
		return 2
	default:
		return 1
	}
}
