package config

import "sort"

var Presets = map[string]*Config{
	"hbn": {
		Structure:  StructureConfig{A: 2.51, B: 2.51, C: 20.0, DefectZ: 0.5},
		Dielectric: DielectricConfig{Electronic: [3]float64{4.95, 4.95, 2.86}, Ionic: [3]float64{1.92, 1.92, 0.60}},
		Epsilon:    EpsilonConfig{NumGrid: 100, Mul: 1, Center: 0.5, Sigma: 0.5},
		Charge:     ChargeConfig{State: 1, Sigma: 1.0},
	},
	"hbn_2x2": {
		Structure:  StructureConfig{A: 5.02, B: 5.02, C: 20.0, DefectZ: 0.5},
		Dielectric: DielectricConfig{Electronic: [3]float64{4.95, 4.95, 2.86}, Ionic: [3]float64{1.92, 1.92, 0.60}},
		Epsilon:    EpsilonConfig{NumGrid: 100, Mul: 1, Center: 0.5, Sigma: 0.5},
		Charge:     ChargeConfig{State: -1, Sigma: 1.0},
		Solver:     SolverConfig{InPlaneCutoff: 6.0},
	},
	"mos2": {
		Structure:  StructureConfig{A: 3.19, B: 3.19, C: 25.0, DefectZ: 0.56},
		Dielectric: DielectricConfig{Electronic: [3]float64{15.4, 15.4, 6.2}, Ionic: [3]float64{0.3, 0.3, 0.2}},
		Epsilon:    EpsilonConfig{NumGrid: 120, Mul: 1, Center: 0.5, Sigma: 1.0},
		Charge:     ChargeConfig{State: 1, Sigma: 1.5},
		Alignment:  AlignmentConfig{Window: 2.0},
	},
}

// GetPreset returns a copy of the named preset with the default data
// directory, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.DataDir = DefaultDataDir
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
