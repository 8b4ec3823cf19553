package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/slabpot/internal/errs"
)

const (
	DefaultNumGrid      = 100
	DefaultMul          = 1
	DefaultCenter       = 0.5
	DefaultEpsilonSigma = 0.5
	DefaultChargeSigma  = 1.0
	DefaultDataDir      = "slabpot_data"
)

type Config struct {
	Structure  StructureConfig  `yaml:"structure"`
	Dielectric DielectricConfig `yaml:"dielectric"`
	Epsilon    EpsilonConfig    `yaml:"epsilon"`
	Charge     ChargeConfig     `yaml:"charge"`
	Solver     SolverConfig     `yaml:"solver"`
	Alignment  AlignmentConfig  `yaml:"alignment"`
	FP         FPConfig         `yaml:"fp,omitempty"`
	DataDir    string           `yaml:"data_dir"`
}

// StructureConfig holds lattice lengths in Å and the defect position as a
// fractional coordinate along c.
type StructureConfig struct {
	A       float64 `yaml:"a"`
	B       float64 `yaml:"b"`
	C       float64 `yaml:"c"`
	DefectZ float64 `yaml:"defect_z"`
}

// DielectricConfig holds the diagonal of the bulk dielectric tensors.
// Electronic is the ion-clamped ε∞, not ε∞ - 1.
type DielectricConfig struct {
	Electronic [3]float64 `yaml:"electronic"`
	Ionic      [3]float64 `yaml:"ionic"`
}

type EpsilonConfig struct {
	NumGrid int     `yaml:"num_grid"`
	Mul     int     `yaml:"mul"`
	Center  float64 `yaml:"center"`
	Sigma   float64 `yaml:"sigma"`
}

type ChargeConfig struct {
	State float64 `yaml:"state"`
	Sigma float64 `yaml:"sigma"`
}

type SolverConfig struct {
	Workers       int     `yaml:"workers"`
	InPlaneCutoff float64 `yaml:"in_plane_cutoff"`
}

type AlignmentConfig struct {
	// Window is the far-region half-width in Å; 0 picks a tenth of c.
	Window float64 `yaml:"window"`
}

// FPConfig points at two-column (z, value) plane-averaged potentials.
type FPConfig struct {
	Defect  string `yaml:"defect,omitempty"`
	Perfect string `yaml:"perfect,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Structure: StructureConfig{A: 2.51, B: 2.51, C: 20.0, DefectZ: 0.5},
		Dielectric: DielectricConfig{
			Electronic: [3]float64{4.95, 4.95, 2.86},
			Ionic:      [3]float64{1.92, 1.92, 0.60},
		},
		Epsilon: EpsilonConfig{
			NumGrid: DefaultNumGrid,
			Mul:     DefaultMul,
			Center:  DefaultCenter,
			Sigma:   DefaultEpsilonSigma,
		},
		Charge:  ChargeConfig{State: 1, Sigma: DefaultChargeSigma},
		DataDir: DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	const op = "config.Validate"
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"structure.a", c.Structure.A},
		{"structure.b", c.Structure.B},
		{"structure.c", c.Structure.C},
		{"epsilon.sigma", c.Epsilon.Sigma},
		{"charge.sigma", c.Charge.Sigma},
	} {
		if !(f.v > 0) {
			return errs.Config(op, f.name, f.v, "must be positive")
		}
	}
	if c.Epsilon.NumGrid < 1 {
		return errs.Config(op, "epsilon.num_grid", c.Epsilon.NumGrid, "must be at least 1")
	}
	if c.Epsilon.Mul < 1 {
		return errs.Config(op, "epsilon.mul", c.Epsilon.Mul, "must be at least 1")
	}
	for i := 0; i < 3; i++ {
		if !(c.Dielectric.Electronic[i] >= 1) {
			return errs.Config(op, "dielectric.electronic", c.Dielectric.Electronic, "ε∞ must be at least 1")
		}
		if c.Dielectric.Ionic[i] < 0 {
			return errs.Config(op, "dielectric.ionic", c.Dielectric.Ionic, "must not be negative")
		}
	}
	if c.Solver.InPlaneCutoff < 0 {
		return errs.Config(op, "solver.in_plane_cutoff", c.Solver.InPlaneCutoff, "must not be negative")
	}
	if c.Alignment.Window < 0 {
		return errs.Config(op, "alignment.window", c.Alignment.Window, "must not be negative")
	}
	if (c.FP.Defect == "") != (c.FP.Perfect == "") {
		return errs.Config(op, "fp", c.FP, "defect and perfect profiles go together")
	}
	return nil
}

// DefectZPos is the absolute defect height in Å.
func (c *Config) DefectZPos() float64 { return c.Structure.DefectZ * c.Structure.C }

// EpsilonCenter is the absolute slab center in Å.
func (c *Config) EpsilonCenter() float64 { return c.Epsilon.Center * c.Structure.C }

// ElectronicExcess returns ε∞ - 1, the electronic part of the profile.
func (c *Config) ElectronicExcess() [3]float64 {
	var out [3]float64
	for i, v := range c.Dielectric.Electronic {
		out[i] = v - 1
	}
	return out
}
