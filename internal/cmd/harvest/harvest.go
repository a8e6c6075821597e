// Package harvest parses harvest command flags and drives fixture regeneration.
package harvest

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/louisbranch/harvest/internal/platform/config"
	"github.com/louisbranch/harvest/internal/tools/harvest"
)

// Config holds harvest command configuration.
type Config struct {
	SDKPath    string `env:"HARVEST_LUA_SDK_PATH"`
	Output     string `env:"HARVEST_OUTPUT_DIR"`
	EnginePath string `env:"HARVEST_ENGINE_PATH"`
	Scenarios  []string
	List       bool
	Verbose    bool `env:"HARVEST_VERBOSE"`
}

// scenarioList accumulates repeated -scenario flags.
type scenarioList []string

func (s *scenarioList) String() string { return strings.Join(*s, ",") }

func (s *scenarioList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	var requested scenarioList
	fs.StringVar(&cfg.SDKPath, "lua-sdk", cfg.SDKPath, "path to the Lua SDK checkout holding scenario modules")
	fs.StringVar(&cfg.Output, "output", cfg.Output, "fixture output directory (default: integration/fixtures/lua under the repo root)")
	fs.StringVar(&cfg.EnginePath, "engine-path", cfg.EnginePath, "engine binary handed to scenarios that spawn one")
	fs.Var(&requested, "scenario", "scenario to run (repeatable; default: all)")
	fs.BoolVar(&cfg.List, "list", cfg.List, "list available scenarios")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose output")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Scenarios = requested

	if cfg.Output == "" {
		root, err := repoRoot()
		if err != nil {
			return Config{}, err
		}
		cfg.Output = filepath.Join(root, "integration", "fixtures", "lua")
	}
	return cfg, nil
}

// Run executes the harvest command: it resolves the SDK checkout, selects the
// requested scenarios, and regenerates their fixtures in order. The first
// failure aborts the run; the completion line is printed only when every
// selected scenario succeeded.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	if cfg.List {
		fmt.Fprintln(out, "Available scenarios:")
		for _, sc := range harvest.Scenarios() {
			fmt.Fprintf(out, "  %s - %s\n", sc.Name, sc.Description)
		}
		return nil
	}

	sdkRoot, err := resolveSDKPath(cfg.SDKPath)
	if err != nil {
		return err
	}
	outputDir, err := filepath.Abs(cfg.Output)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	selected, err := harvest.Select(cfg.Scenarios)
	if err != nil {
		return err
	}

	runner, err := harvest.NewRunner(harvest.Config{
		SDKRoot:    sdkRoot,
		OutputDir:  outputDir,
		EnginePath: cfg.EnginePath,
		Out:        out,
		Logger:     log.New(errOut, "", 0),
		Verbose:    cfg.Verbose,
	})
	if err != nil {
		return err
	}

	for _, sc := range selected {
		if err := runner.Run(ctx, sc); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "[harvest] completed")
	return nil
}

func resolveSDKPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("lua sdk path is required (set -lua-sdk or HARVEST_LUA_SDK_PATH)")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve sdk path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("lua sdk path does not exist: %s", abs)
		}
		return "", fmt.Errorf("stat sdk path: %w", err)
	}
	return abs, nil
}

func repoRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("failed to resolve runtime caller")
	}

	dir := filepath.Dir(filename)
	for {
		candidate := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("go.mod not found from %s", filename)
}
