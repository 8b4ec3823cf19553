// Package pipeline runs the stages of a slab correction from one config:
// dielectric profile, model charge, model potential and, when
// first-principles profiles are configured, the slab energy.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/slabpot/internal/charge"
	"github.com/san-kum/slabpot/internal/config"
	"github.com/san-kum/slabpot/internal/epsilon"
	"github.com/san-kum/slabpot/internal/grid"
	"github.com/san-kum/slabpot/internal/logging"
	"github.com/san-kum/slabpot/internal/potential"
	"github.com/san-kum/slabpot/internal/slab"
	"github.com/san-kum/slabpot/internal/storage"
)

type Result struct {
	Epsilon     *epsilon.Distribution
	ChargeModel *charge.Model
	Potential   *potential.Potential
	// FP, Slab and Energy are nil unless the config names FP profiles.
	FP     *potential.FP1dPotential
	Slab   *slab.Model
	Energy *slab.Energy
}

// ZGrid is the stacking-axis grid of cfg.
func ZGrid(cfg *config.Config) (grid.Grid, error) {
	return grid.New(cfg.Structure.C, cfg.Epsilon.NumGrid, cfg.Epsilon.Mul)
}

func BuildEpsilon(cfg *config.Config) (*epsilon.Distribution, error) {
	zg, err := ZGrid(cfg)
	if err != nil {
		return nil, err
	}
	return epsilon.NewGaussian(zg, cfg.ElectronicExcess(), cfg.Dielectric.Ionic, cfg.EpsilonCenter(), cfg.Epsilon.Sigma)
}

// BuildChargeModel samples the in-plane axes at roughly the z spacing of
// eps and places a unit Gaussian at the configured defect height.
func BuildChargeModel(cfg *config.Config, eps *epsilon.Distribution) (*charge.Model, error) {
	zg := eps.Grid()
	gx, err := grid.New(cfg.Structure.A, charge.InPlaneNumGrid(cfg.Structure.A, zg.Length(), zg.NumGrid()), 1)
	if err != nil {
		return nil, err
	}
	gy, err := grid.New(cfg.Structure.B, charge.InPlaneNumGrid(cfg.Structure.B, zg.Length(), zg.NumGrid()), 1)
	if err != nil {
		return nil, err
	}
	static := eps.Static()
	return charge.NewSingle(grid.NewGrids(gx, gy, zg), cfg.Charge.Sigma, cfg.DefectZPos(), static[grid.X], static[grid.Y])
}

func SolvePotential(ctx context.Context, cfg *config.Config, eps *epsilon.Distribution, model *charge.Model, log *logging.Logger) (*potential.Potential, error) {
	return potential.Solve(ctx, eps, model, potential.Options{
		Workers:       cfg.Solver.Workers,
		InPlaneCutoff: cfg.Solver.InPlaneCutoff,
		Logger:        log.Zap(),
	})
}

// LoadFP reads the configured defect and perfect profiles and builds their
// sign-flipped difference over length.
func LoadFP(cfg *config.Config, length float64) (*potential.FP1dPotential, error) {
	_, defect, err := storage.ReadColumns(cfg.FP.Defect)
	if err != nil {
		return nil, fmt.Errorf("defect profile: %w", err)
	}
	_, perfect, err := storage.ReadColumns(cfg.FP.Perfect)
	if err != nil {
		return nil, fmt.Errorf("perfect profile: %w", err)
	}
	return potential.NewFP1dPotentialFromAverages(length, defect, perfect)
}

// Run executes every stage. A nil log discards output.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (*Result, error) {
	if log == nil {
		log = logging.Nop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res := &Result{}
	var err error

	if res.Epsilon, err = BuildEpsilon(cfg); err != nil {
		return nil, fmt.Errorf("epsilon: %w", err)
	}
	log.Info("epsilon distribution built", "num_grid", res.Epsilon.NumGrid(), "ave_ele", res.Epsilon.AveElectronic(), "ave_ion", res.Epsilon.AveIonic())

	if res.ChargeModel, err = BuildChargeModel(cfg, res.Epsilon); err != nil {
		return nil, fmt.Errorf("charge model: %w", err)
	}
	log.Info("charge model built", "dims", res.ChargeModel.Grids().Dims(), "total_charge", res.ChargeModel.TotalCharge())

	start := time.Now()
	if res.Potential, err = SolvePotential(ctx, cfg, res.Epsilon, res.ChargeModel, log); err != nil {
		return nil, fmt.Errorf("potential: %w", err)
	}
	log.Info("potential solved", "modes", res.Potential.Solver().SolvedModes, "elapsed", time.Since(start))

	if cfg.FP.Defect == "" {
		return res, nil
	}

	if res.FP, err = LoadFP(cfg, res.Epsilon.Grid().Length()); err != nil {
		return nil, fmt.Errorf("fp potential: %w", err)
	}
	if res.Slab, err = slab.New(cfg.Charge.State, res.Epsilon, res.ChargeModel, res.Potential, res.FP); err != nil {
		return nil, fmt.Errorf("slab model: %w", err)
	}
	res.Slab.Window = cfg.Alignment.Window
	if res.Energy, err = res.Slab.ElectrostaticEnergy(); err != nil {
		return nil, fmt.Errorf("energy: %w", err)
	}
	log.Info("electrostatic energy", "energy", res.Energy.Electrostatic, "alignment", res.Energy.Alignment, "flatness", res.Energy.Flatness)
	return res, nil
}

// Save writes every computed entity under its default name and returns the
// paths written.
func (r *Result) Save(s *storage.Store) ([]string, error) {
	docs := []struct {
		name string
		v    any
		ok   bool
	}{
		{storage.EpsilonName, r.Epsilon, r.Epsilon != nil},
		{storage.ChargeModelName, r.ChargeModel, r.ChargeModel != nil},
		{storage.PotentialName, r.Potential, r.Potential != nil},
		{storage.FPName, r.FP, r.FP != nil},
		{storage.SlabModelName, r.Slab, r.Slab != nil},
		{storage.EnergyName, r.Energy, r.Energy != nil},
	}
	var paths []string
	for _, d := range docs {
		if !d.ok {
			continue
		}
		path, err := s.Save(d.name, d.v)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	if r.Slab != nil {
		profiles, err := r.Slab.Profiles()
		if err != nil {
			return paths, err
		}
		path, err := s.SaveProfilesCSV(storage.ProfilesName, profiles)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
