package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/get-convex/convex-backend/internal/app"
	"github.com/get-convex/convex-backend/internal/cli"
	"github.com/get-convex/convex-backend/internal/command"
)

// main is the entrypoint for the distbuild binary.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}

		var buildErr *command.BuildError
		if errors.As(err, &buildErr) {
			// The command's own output is the diagnosis; no stack trace.
			fmt.Fprintf(os.Stderr, "%v\n\n%s", err, buildErr.Output)
			os.Exit(1)
		}

		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Reports print to outW; logs and failure diagnostics go to logW.
func run(outW, logW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	buildApp := app.New(outW, logW, appConfig)
	if appConfig.Watch {
		return buildApp.RunWatch(ctx)
	}
	return buildApp.Run(ctx)
}
