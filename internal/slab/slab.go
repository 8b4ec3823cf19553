// Package slab combines the dielectric profile, model charge, model
// potential and first-principles potential of one charged defect and
// derives the electrostatic correction from them.
//
// Conventions:
//
//	E_per     = q²/2 · Σ ρ φ dV           (model energy in the periodic cell)
//	diff(z)   = V_fp(z) − q·φ̄(z)          (φ̄ resampled onto the FP grid)
//	ΔV        = mean of diff over the far window
//	alignment = −q·ΔV
//	E_corr    = E_iso − E_per + alignment
//
// The far window is centered half a cell away from the defect along z.
package slab

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/slabpot/internal/charge"
	"github.com/san-kum/slabpot/internal/epsilon"
	"github.com/san-kum/slabpot/internal/errs"
	"github.com/san-kum/slabpot/internal/grid"
	"github.com/san-kum/slabpot/internal/potential"
)

// DefaultWindowFraction sets the far window half-width as a fraction of the
// z length when Model.Window is zero.
const DefaultWindowFraction = 0.1

type Model struct {
	Charge      float64
	Epsilon     *epsilon.Distribution
	ChargeModel *charge.Model
	Potential   *potential.Potential
	FP          *potential.FP1dPotential
	// Window is the far-region half-width in Å.
	Window float64
}

// New checks that every part describes the same cell.
func New(q float64, eps *epsilon.Distribution, model *charge.Model, pot *potential.Potential, fp *potential.FP1dPotential) (*Model, error) {
	m := &Model{Charge: q, Epsilon: eps, ChargeModel: model, Potential: pot, FP: fp}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) Validate() error {
	const op = "slab.Validate"
	if m.Epsilon == nil || m.ChargeModel == nil || m.Potential == nil || m.FP == nil {
		return errs.Config(op, "model", "incomplete", "epsilon, charge model, potential and fp potential are required")
	}
	if math.IsNaN(m.Charge) || math.IsInf(m.Charge, 0) {
		return errs.Config(op, "charge", m.Charge, "must be finite")
	}
	if m.Window < 0 {
		return errs.Config(op, "window", m.Window, "must not be negative")
	}

	zg := m.ChargeModel.Grids()[grid.Z]
	if !m.Epsilon.Grid().SameSampling(zg) {
		return errs.Shape(op, "epsilon grid has %d points over %g Å, charge z grid has %d points over %g Å",
			m.Epsilon.NumGrid(), m.Epsilon.Grid().Length(), zg.NumGrid(), zg.Length())
	}
	if !m.Potential.Grids().Equal(m.ChargeModel.Grids()) {
		return errs.Shape(op, "potential grids %v differ from charge grids %v",
			m.Potential.Grids().Dims(), m.ChargeModel.Grids().Dims())
	}
	if fl := m.FP.Grid().Length(); math.Abs(fl-zg.Length()) > grid.LengthTolerance {
		return errs.Shape(op, "fp potential spans %g Å, cell is %g Å along z", fl, zg.Length())
	}
	return nil
}

// ElectrostaticEnergy evaluates the energy and alignment terms.
func (m *Model) ElectrostaticEnergy() (*Energy, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	grids := m.ChargeModel.Grids()
	rho, phi := m.ChargeModel.Charges(), m.Potential.Field()
	eper := 0.5 * m.Charge * m.Charge * floats.Dot(rho.Data, phi.Data) * grids.VoxelVolume()

	diff, err := m.diff()
	if err != nil {
		return nil, err
	}

	fpGrid := m.FP.Grid()
	farZ := fpGrid.Wrap(m.ChargeModel.DefectZPos() + fpGrid.Length()/2)
	window := m.window()
	var far []float64
	for i, z := range fpGrid.Points() {
		if math.Abs(fpGrid.MinImage(z, farZ)) <= window {
			far = append(far, diff[i])
		}
	}
	if len(far) == 0 {
		far = append(far, diff[nearest(fpGrid, farZ)])
	}
	mean, std := stat.PopMeanStdDev(far, nil)

	e := &Energy{
		Charge:             m.Charge,
		Electrostatic:      eper,
		AlignmentPotential: mean,
		Alignment:          -m.Charge * mean,
		Flatness:           std,
		FarZ:               farZ,
		Window:             window,
	}
	if !e.finite() {
		return nil, errs.Degenerate("slab.ElectrostaticEnergy", "energy", e.Electrostatic, "result is not finite")
	}
	return e, nil
}

func (m *Model) window() float64 {
	if m.Window > 0 {
		return m.Window
	}
	return DefaultWindowFraction * m.FP.Grid().Length()
}

func nearest(g grid.Grid, z float64) int {
	i := int(math.Round(g.Wrap(z) / g.Spacing()))
	return i % g.NumGrid()
}

// ModelProfile returns q·φ̄ resampled onto the FP grid.
func (m *Model) ModelProfile() ([]float64, error) {
	zg := m.ChargeModel.Grids()[grid.Z]
	avg := m.Potential.PlaneAverage()

	// Periodic extension so points beyond the last sample interpolate
	// back towards the first.
	xs := append(zg.Points(), zg.Length())
	ys := append(avg, avg[0])
	floats.Scale(m.Charge, ys)

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, err
	}
	fpGrid := m.FP.Grid()
	out := make([]float64, fpGrid.NumGrid())
	for i, z := range fpGrid.Points() {
		out[i] = pl.Predict(zg.Wrap(z))
	}
	return out, nil
}

func (m *Model) diff() ([]float64, error) {
	model, err := m.ModelProfile()
	if err != nil {
		return nil, err
	}
	out := m.FP.Values()
	floats.Sub(out, model)
	return out, nil
}

// DiffProfile is V_fp − q·φ̄ on the FP grid.
func (m *Model) DiffProfile() (grid.Profile, error) {
	if err := m.Validate(); err != nil {
		return grid.Profile{}, err
	}
	d, err := m.diff()
	if err != nil {
		return grid.Profile{}, err
	}
	return grid.Profile{Name: "fp - model", X: m.FP.Points(), Y: d}, nil
}

// Profiles returns the curves of a profile plot: dielectric constants,
// line charge density, model and FP potentials and their difference.
func (m *Model) Profiles() ([]grid.Profile, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	out := m.Epsilon.Profiles()

	grids := m.ChargeModel.Grids()
	zs := grids[grid.Z].Points()
	lambda := m.ChargeModel.PlaneAverage()
	floats.Scale(m.Charge*grids.XYArea(), lambda)
	out = append(out, grid.Profile{Name: "charge", X: zs, Y: lambda})

	pot := m.Potential.PlaneAverage()
	floats.Scale(m.Charge, pot)
	out = append(out, grid.Profile{Name: "model potential", X: zs, Y: pot})
	out = append(out, grid.Profile{Name: "fp potential", X: m.FP.Points(), Y: m.FP.Values()})

	d, err := m.diff()
	if err != nil {
		return nil, err
	}
	return append(out, grid.Profile{Name: "fp - model", X: m.FP.Points(), Y: d}), nil
}
