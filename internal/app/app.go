package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/agbru/matcalc/internal/calibration"
	"github.com/agbru/matcalc/internal/cli"
	"github.com/agbru/matcalc/internal/config"
	"github.com/agbru/matcalc/internal/engine"
	apperrors "github.com/agbru/matcalc/internal/errors"
	"github.com/agbru/matcalc/internal/logging"
	"github.com/agbru/matcalc/internal/orchestration"
	"github.com/agbru/matcalc/internal/server"
	"github.com/agbru/matcalc/internal/ui"
)

// Application is one invocation of matcalc: the parsed configuration and
// the algorithm registry it runs against.
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// Factory provides the multiplication algorithms.
	Factory engine.CalculatorFactory
	// ErrWriter receives logs and error messages (typically os.Stderr).
	ErrWriter io.Writer
}

// New parses args (args[0] is the program name) and returns the application.
// The error is flag.ErrHelp when -h was given.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := engine.GlobalFactory()

	programName := "matcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, factory.List())
	if err != nil {
		return nil, err
	}
	return &Application{
		Config:    cfg,
		Factory:   factory,
		ErrWriter: errWriter,
	}, nil
}

// Run executes the configured mode and returns the process exit code. The
// whole run is bounded by Config.Timeout and canceled by SIGINT/SIGTERM.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if err := logging.Setup(a.ErrWriter, a.Config.LogLevel, a.Config.NoColor); err != nil {
		fmt.Fprintf(a.ErrWriter, "Configuration error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	ui.InitTheme(a.Config.NoColor, isTerminal(out))

	ctx, stop := runContext(ctx, a.Config.Timeout)
	defer stop()

	if a.Config.MetricsAddr != "" {
		stop, err := a.startMetricsServer(ctx)
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "Metrics server error: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		defer stop()
	}

	if a.Config.Calibrate {
		return a.runCalibration(ctx, out)
	}
	a.Config = a.runAutoCalibrationIfEnabled(ctx, out)
	return a.runBenchmark(ctx, out)
}

// metricsShutdownTimeout bounds the wait for in-flight scrapes at exit.
const metricsShutdownTimeout = 2 * time.Second

// startMetricsServer binds Config.MetricsAddr and serves it in the
// background. stop shuts the server down and waits for it.
func (a *Application) startMetricsServer(ctx context.Context) (stop func(), err error) {
	srv := server.NewServer(a.Config.MetricsAddr, a.Factory,
		server.WithLogger(logging.NewLogger("metrics")),
		server.WithTimeouts(server.Timeouts{ShutdownTimeout: metricsShutdownTimeout}),
	)
	if err := srv.Listen(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Serve(ctx); err != nil {
			fmt.Fprintf(a.ErrWriter, "Metrics server error: %v\n", err)
		}
	}()
	return func() {
		cancel()
		wg.Wait()
	}, nil
}

func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	return calibration.RunCalibrationWithOptions(ctx, out, a.Factory.GetAll(), calibration.CalibrationOptions{
		ProfilePath: a.Config.CalibrationProfile,
		SaveProfile: true,
		Timeout:     a.Config.Timeout,
	})
}

// runAutoCalibrationIfEnabled returns the configuration tuned by
// -auto-calibrate, or the current one.
func (a *Application) runAutoCalibrationIfEnabled(ctx context.Context, out io.Writer) config.AppConfig {
	if !a.Config.AutoCalibrate {
		return a.Config
	}
	progressOut := out
	if a.Config.Quiet || a.Config.JSONOutput {
		progressOut = io.Discard
	}
	if updated, ok := calibration.AutoCalibrate(ctx, a.Config, progressOut, a.Factory.GetAll()); ok {
		return updated
	}
	return a.Config
}

// runBenchmark multiplies one random pair with every selected algorithm plus
// the oracle, then reports the verdict as a table, JSON or quiet lines.
func (a *Application) runBenchmark(ctx context.Context, out io.Writer) int {
	cfg := a.Config
	calculators := cli.GetCalculatorsToRun(cfg, a.Factory)
	if oracle, err := a.Factory.Get(engine.OracleName); err == nil {
		calculators = orchestration.EnsureOracle(calculators, oracle)
	}

	if err := orchestration.CheckMemory(cfg, len(calculators)); err != nil {
		return apperrors.HandleCalculationError(err, 0, a.ErrWriter, ui.Palette{})
	}
	in := orchestration.GenerateInputs(cfg)
	cfg.Seed = in.Seed
	runID := orchestration.NewRunID()
	logger := logging.NewLogger("app")
	logger.Debug("run started", "run_id", runID, "n", cfg.N, "algorithms", len(calculators))

	quiet := cfg.Quiet || cfg.JSONOutput
	progressOut := out
	if quiet {
		progressOut = io.Discard
	} else {
		cli.PrintExecutionConfig(cfg, out)
		cli.PrintExecutionMode(calculators, cfg.Jobs, out)
	}

	results := orchestration.ExecuteCalculations(ctx, calculators, in, cfg, progressOut)
	report := orchestration.BuildReport(runID, results, in, cfg)
	logger.Debug("run finished", "run_id", runID, "status", report.Status, "exit_code", report.ExitCode)

	if cfg.OutputFile != "" {
		if err := cli.WriteJSONFile(cfg.OutputFile, report); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving report: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
	}

	switch {
	case cfg.JSONOutput:
		if err := cli.WriteJSON(out, report); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error writing report: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		return report.ExitCode
	case cfg.Quiet:
		for _, r := range report.Results {
			cli.DisplayQuietResult(out, r.Name, quietStatus(r), r.DurationNs)
		}
		return report.ExitCode
	}

	exitCode := orchestration.AnalyzeComparisonResults(results, cfg, out)
	if cfg.OutputFile != "" {
		fmt.Fprintf(out, "\n%sReport saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), cfg.OutputFile, ui.ColorReset())
	}
	return exitCode
}

func quietStatus(r orchestration.AlgorithmReport) string {
	switch {
	case r.Error != "":
		return "error"
	case r.Match:
		return "ok"
	default:
		return "mismatch"
	}
}

// IsHelpError reports whether err comes from -h or -help.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
