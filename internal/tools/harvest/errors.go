package harvest

import (
	"fmt"
	"strings"
)

// UnknownScenarioError reports every requested name with no registry entry.
type UnknownScenarioError struct {
	Names []string
}

func (e *UnknownScenarioError) Error() string {
	return fmt.Sprintf("unknown scenario(s): %s", strings.Join(e.Names, ", "))
}

// LoadError reports a scenario module that could not be loaded.
type LoadError struct {
	Scenario string
	Module   string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("scenario %s: load module %s: %v", e.Scenario, e.Module, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// MissingEntryPointError reports a loaded module that does not expose the
// expected entry function.
type MissingEntryPointError struct {
	Scenario   string
	Module     string
	EntryPoint string
}

func (e *MissingEntryPointError) Error() string {
	return fmt.Sprintf("scenario %s: module %s does not define function %q", e.Scenario, e.Module, e.EntryPoint)
}
