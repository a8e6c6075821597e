package harvest

// Select resolves requested scenario names against the registry. An empty
// request selects every scenario in registration order. Otherwise the result
// follows the requested order, keeping duplicates. When any name has no
// registry entry, Select returns an UnknownScenarioError listing every
// unknown name rather than stopping at the first.
func Select(requested []string) ([]Scenario, error) {
	if len(requested) == 0 {
		return Scenarios(), nil
	}

	var unknown []string
	selected := make([]Scenario, 0, len(requested))
	for _, name := range requested {
		s, ok := Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		selected = append(selected, s)
	}
	if len(unknown) > 0 {
		return nil, &UnknownScenarioError{Names: unknown}
	}
	return selected, nil
}
