package config

import "sort"

var Presets = map[string]OptimizerConfig{
	// depth-first exclusion with pairs counted twice; atoms three bonds
	// apart already interact, hence order 2
	"reference": {
		Iterations: 100, MaxShift: 0.05, ExclusionOrder: 2,
		Traversal: "dfs", PairCounting: "both", Workers: 1,
	},
	"gentle": {
		Iterations: 500, MaxShift: 0.01, ExclusionOrder: 3,
		Traversal: "bfs", PairCounting: "both", Workers: 1,
	},
	"thorough": {
		Iterations: 5000, MaxShift: 0.05, ExclusionOrder: 3,
		Traversal: "bfs", PairCounting: "once", Workers: 4, Rebond: true,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *OptimizerConfig {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
