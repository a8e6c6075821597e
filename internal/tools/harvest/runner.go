package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/Shopify/go-lua"
)

// Config controls a harvest run.
type Config struct {
	// SDKRoot is the absolute path to the Lua SDK checkout holding the
	// scenario modules.
	SDKRoot string
	// OutputDir is the directory fixtures are written into.
	OutputDir string
	// EnginePath optionally redirects scenarios at a specific engine binary.
	// When empty the argument is omitted from the invocation entirely, so
	// scenario code can tell "not supplied" apart from "supplied as empty".
	EnginePath string
	// Out receives progress lines.
	Out io.Writer
	// Logger receives verbose diagnostics.
	Logger  *log.Logger
	Verbose bool
}

// Runner loads scenario modules from an SDK checkout and invokes their entry
// points, one scenario at a time.
type Runner struct {
	sdkRoot    string
	outputDir  string
	enginePath string
	out        io.Writer
	logger     *log.Logger
	verbose    bool
}

// NewRunner prepares a runner from cfg.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.SDKRoot == "" {
		return nil, errors.New("sdk root is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("output directory is required")
	}

	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	return &Runner{
		sdkRoot:    cfg.SDKRoot,
		outputDir:  cfg.OutputDir,
		enginePath: cfg.EnginePath,
		out:        out,
		logger:     logger,
		verbose:    cfg.Verbose,
	}, nil
}

// Run loads the scenario module and invokes its entry point exactly once.
// The scenario writes the fixture itself; the runner prepares the output
// directory, clears any stale fixture so appends start from an empty file,
// and dispatches. Errors raised by the scenario propagate and abort the
// remaining run.
func (r *Runner) Run(ctx context.Context, sc Scenario) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	outputPath := filepath.Join(r.outputDir, sc.Name+".jsonl")
	if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale fixture: %w", err)
	}

	fmt.Fprintf(r.out, "[harvest] running %s -> %s\n", sc.Name, outputPath)

	state := newScenarioState(r.sdkRoot)

	path := moduleFile(r.sdkRoot, sc.Module)
	r.logf("scenario %s: loading %s", sc.Name, path)
	if err := lua.LoadFile(state, path, ""); err != nil {
		return &LoadError{Scenario: sc.Name, Module: sc.Module, Err: err}
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return &LoadError{Scenario: sc.Name, Module: sc.Module, Err: err}
	}

	entry := sc.entry()
	if state.TypeOf(-1) != lua.TypeTable {
		return &MissingEntryPointError{Scenario: sc.Name, Module: sc.Module, EntryPoint: entry}
	}
	state.Field(-1, entry)
	if state.TypeOf(-1) != lua.TypeFunction {
		return &MissingEntryPointError{Scenario: sc.Name, Module: sc.Module, EntryPoint: entry}
	}

	args := 1
	state.PushString(outputPath)
	if r.enginePath != "" {
		state.PushString(r.enginePath)
		args = 2
	}
	if err := state.ProtectedCall(args, 0, 0); err != nil {
		return fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	r.logf("scenario %s done", sc.Name)
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
