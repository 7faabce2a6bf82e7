// Command matcalc multiplies two random square matrices with every selected
// algorithm, verifies each product against the naive triple loop and reports
// timings and agreement.
package main

import (
	"context"
	"os"

	"github.com/agbru/matcalc/internal/app"
	apperrors "github.com/agbru/matcalc/internal/errors"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	if len(args) > 1 && app.HasVersionFlag(args[1:]) {
		app.PrintVersion(stdout)
		return apperrors.ExitSuccess
	}

	application, err := app.New(args, stderr)
	if err != nil {
		if app.IsHelpError(err) {
			return apperrors.ExitSuccess
		}
		return apperrors.ExitErrorConfig
	}
	return application.Run(context.Background(), stdout)
}
