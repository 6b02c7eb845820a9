package config

import "sort"

// Presets are keyed by substance family (the chem.Type name), then by
// preset name. Fields left zero are filled from DefaultConfig by GetPreset.
var Presets = map[string]map[string]*Config{
	"strong_acid": {
		"hcl_titration": {
			Substance: "hydrochloric_acid", Molarity: 0.1, BeakerVolume: 50,
			TitrantMolarity: 0.1, MaxVolume: 100,
		},
		"dilute_nitric": {
			Substance: "nitric_acid", Molarity: 0.001, BeakerVolume: 25,
			TitrantMolarity: 0.001, MaxVolume: 50,
		},
	},
	"strong_base": {
		"naoh_titration": {
			Substance: "sodium_hydroxide", Molarity: 0.1, BeakerVolume: 50,
			TitrantMolarity: 0.1, MaxVolume: 100,
		},
		"concentrated_koh": {
			Substance: "potassium_hydroxide", Molarity: 1.0, BeakerVolume: 20,
			TitrantMolarity: 0.5, MaxVolume: 80,
		},
	},
	"weak_acid": {
		"acetic_titration": {
			Substance: "acetic_acid", Molarity: 0.1, BeakerVolume: 50,
			TitrantMolarity: 0.1, MaxVolume: 100,
		},
		"acetic_buffer": {
			Substance: "acetic_acid", Molarity: 0.1, BeakerVolume: 50,
			TitrantMolarity: 0.1, MaxVolume: 50, WaterLevel: 8,
		},
		"hf_small_beaker": {
			Substance: "hydrofluoric_acid", Molarity: 0.05, BeakerVolume: 20,
			TitrantMolarity: 0.1, MaxVolume: 20,
			Grid: GridConfig{Columns: 10, Rows: 8},
		},
	},
	"weak_base": {
		"ammonia_titration": {
			Substance: "ammonia", Molarity: 0.1, BeakerVolume: 50,
			TitrantMolarity: 0.1, MaxVolume: 100,
		},
		"pyridine_buffer": {
			Substance: "pyridine", Molarity: 0.2, BeakerVolume: 25,
			TitrantMolarity: 0.2, MaxVolume: 50,
		},
	},
}

// GetPreset returns a copy of the named preset merged over the defaults, or
// nil if the family or preset does not exist.
func GetPreset(family, preset string) *Config {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	p, ok := familyPresets[preset]
	if !ok {
		return nil
	}
	return merge(DefaultConfig(), p)
}

func ListPresets(family string) []string {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(familyPresets))
	for name := range familyPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListFamilies() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func merge(base, over *Config) *Config {
	out := *base
	if over.Substance != "" {
		out.Substance = over.Substance
	}
	if over.Molarity > 0 {
		out.Molarity = over.Molarity
	}
	if over.BeakerVolume > 0 {
		out.BeakerVolume = over.BeakerVolume
	}
	if over.TitrantMolarity > 0 {
		out.TitrantMolarity = over.TitrantMolarity
	}
	if over.MaxVolume > 0 {
		out.MaxVolume = over.MaxVolume
	}
	if over.Samples > 0 {
		out.Samples = over.Samples
	}
	if over.WaterLevel > 0 {
		out.WaterLevel = over.WaterLevel
	}
	if over.Seed != 0 {
		out.Seed = over.Seed
	}
	if over.Grid.Columns > 0 {
		out.Grid.Columns = over.Grid.Columns
	}
	if over.Grid.Rows > 0 {
		out.Grid.Rows = over.Grid.Rows
	}
	return &out
}
