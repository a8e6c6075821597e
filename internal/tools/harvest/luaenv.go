package harvest

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

// newScenarioState builds a fresh Lua state wired for one scenario run: the
// standard libraries, the SDK checkout on package.path, and the transcript
// helpers. Each run gets its own state so nothing leaks between scenarios.
func newScenarioState(sdkRoot string) *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	prependPackagePath(state, sdkRoot)
	registerTranscript(state)
	return state
}

// prependPackagePath puts the SDK checkout ahead of the default search path
// so scenario modules resolve their SDK neighbors first.
func prependPackagePath(state *lua.State, root string) {
	patterns := filepath.Join(root, "?.lua") + ";" + filepath.Join(root, "?", "init.lua")
	state.Global("package")
	state.Field(-1, "path")
	current, _ := state.ToString(-1)
	state.Pop(1)
	if current != "" {
		patterns += ";" + current
	}
	state.PushString(patterns)
	state.SetField(-2, "path")
	state.Pop(1)
}

// moduleFile maps a dotted module reference to a Lua file beneath root.
func moduleFile(root, ref string) string {
	return filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(ref, ".", "/"))+".lua")
}

// registerTranscript exposes JSONL helpers to scenario code. Lua has no
// native JSON, so transcripts are encoded on the Go side; writing remains the
// scenario's own call.
func registerTranscript(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, transcriptFunctions, 0)
	state.SetGlobal("transcript")
}

var transcriptFunctions = []lua.RegistryFunction{
	{Name: "encode", Function: transcriptEncode},
	{Name: "append", Function: transcriptAppend},
}

func transcriptEncode(state *lua.State) int {
	data, err := json.Marshal(luaToGo(state, 1))
	if err != nil {
		lua.Errorf(state, "transcript.encode: %s", err.Error())
		return 0
	}
	state.PushString(string(data))
	return 1
}

func transcriptAppend(state *lua.State) int {
	path := lua.CheckString(state, 1)
	data, err := json.Marshal(luaToGo(state, 2))
	if err != nil {
		lua.Errorf(state, "transcript.append: %s", err.Error())
		return 0
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		lua.Errorf(state, "transcript.append: %s", err.Error())
		return 0
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		file.Close()
		lua.Errorf(state, "transcript.append: %s", err.Error())
		return 0
	}
	if err := file.Close(); err != nil {
		lua.Errorf(state, "transcript.append: %s", err.Error())
		return 0
	}
	return 0
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
