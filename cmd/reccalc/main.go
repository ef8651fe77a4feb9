// Command reccalc evaluates integer linear recurrence sequences from the
// command line. It delegates all mode dispatch (evaluation, analysis, server,
// REPL, calibration) to the internal app package.
package main

import (
	"context"
	"os"

	"github.com/agbru/reccalc/internal/app"
	apperrors "github.com/agbru/reccalc/internal/errors"
)

func main() {
	os.Exit(run())
}

// run is separated from main so deferred cleanup executes before os.Exit.
func run() int {
	// --version works in any position and bypasses config validation
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		return apperrors.ExitSuccess
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			return apperrors.ExitSuccess
		}
		return apperrors.ExitErrorConfig
	}

	return application.Run(context.Background(), os.Stdout)
}
