// Package harvest regenerates golden JSONL fixtures by running scenario
// modules from a Lua SDK checkout and capturing the transcripts they write.
package harvest

// DefaultEntryPoint is the function a scenario module exposes when its
// descriptor does not name one.
const DefaultEntryPoint = "record"

// Scenario describes one registered harvest scenario. Values are static
// registry data and are never mutated after process start.
type Scenario struct {
	// Name is the unique selection key and the output file stem.
	Name string
	// Module is the dotted module reference resolved beneath the SDK root,
	// e.g. "harvest_scenarios.thread_basic".
	Module string
	// EntryPoint is the function invoked inside the loaded module. Empty
	// means DefaultEntryPoint.
	EntryPoint string
	// Description is informational only, shown by -list.
	Description string
}

// entry returns the function name to invoke for the scenario.
func (s Scenario) entry() string {
	if s.EntryPoint == "" {
		return DefaultEntryPoint
	}
	return s.EntryPoint
}

// scenarios is the canonical registry. Order here is execution order when a
// run selects everything.
var scenarios = []Scenario{
	{
		Name:        "thread_basic",
		Module:      "harvest_scenarios.thread_basic",
		Description: "Simple thread start plus a single turn execution.",
	},
	{
		Name:        "thread_with_tool_retry",
		Module:      "harvest_scenarios.thread_with_tool_retry",
		Description: "Thread that exercises tool invocation and the auto-run retry loop.",
	},
	{
		Name:        "structured_output_success",
		Module:      "harvest_scenarios.structured_output_success",
		Description: "Structured output with a valid JSON payload.",
	},
	{
		Name:        "sandbox_approval_denied",
		Module:      "harvest_scenarios.sandbox_approval_denied",
		Description: "Approval workflow where a command is denied.",
	},
}

// Scenarios returns every registered scenario in registration order.
func Scenarios() []Scenario {
	out := make([]Scenario, len(scenarios))
	copy(out, scenarios)
	return out
}

// Lookup returns the scenario registered under name.
func Lookup(name string) (Scenario, bool) {
	for _, s := range scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}
