package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/danieljhkim/hdlplan/internal/cfgerr"
	"github.com/danieljhkim/hdlplan/internal/cli"
	"github.com/danieljhkim/hdlplan/internal/delegate"
)

var version = "dev"

func main() {
	cli.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Execute(ctx)
	stop()

	if err != nil {
		// The engine already reported its own failure.
		var exitErr *delegate.ExitError
		if !errors.As(err, &exitErr) {
			cli.PrintError(os.Stderr, err.Error())
		}
		os.Exit(cfgerr.ExitCode(err))
	}
}
