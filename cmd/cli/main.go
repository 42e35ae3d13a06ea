package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Vidhant007/docker-lambda-aws/cmd/cli/command"
	"github.com/Vidhant007/docker-lambda-aws/pkg/logs"
	"github.com/Vidhant007/docker-lambda-aws/pkg/term"
)

var version = "development" // overwritten by build script -ldflags "-X main.version=..."

func main() {
	// Handle Ctrl+C so we can exit gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	slog.SetDefault(logs.NewTermLogger(term.DefaultTerm))
	command.SetupCommands(version)
	err := command.Execute(ctx)
	stop()

	if err != nil {
		// If the error is a command.ExitCode, use its value as the exit code
		ec, ok := err.(command.ExitCode)
		if !ok {
			ec = 1
		}
		os.Exit(int(ec))
	}
}
