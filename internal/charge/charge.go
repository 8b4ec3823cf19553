// Package charge builds the smeared model charge placed at a defect site.
//
// A [Model] is either a general Gaussian charge model carrying an explicit
// density ([KindGauss]) or a single isolated point defect whose unit density
// is computed from the grids ([KindSingleGauss]).
package charge

import (
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/slabpot/internal/analysis"
	"github.com/san-kum/slabpot/internal/distribution"
	"github.com/san-kum/slabpot/internal/errs"
	"github.com/san-kum/slabpot/internal/grid"
)

type Kind string

const (
	KindGauss       Kind = "gauss_charge_model"
	KindSingleGauss Kind = "single_gauss_charge_model"
)

type Model struct {
	kind       Kind
	grids      grid.Grids
	sigma      float64
	defectZPos float64
	center     [2]float64
	epsilonX   []float64
	epsilonY   []float64
	charges    *grid.Field3D

	recipOnce sync.Once
	recip     []complex128
}

// New wraps an externally supplied density.
func New(grids grid.Grids, sigma, defectZPos float64, epsilonX, epsilonY []float64, charges *grid.Field3D) (*Model, error) {
	m := &Model{
		kind:       KindGauss,
		grids:      grids,
		sigma:      sigma,
		defectZPos: defectZPos,
		center:     defaultCenter(grids),
		epsilonX:   append([]float64(nil), epsilonX...),
		epsilonY:   append([]float64(nil), epsilonY...),
	}
	if charges != nil {
		m.charges = charges.Clone()
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewSingle builds a unit Gaussian charge centered in-plane at the cell
// center and at defectZPos along z.
func NewSingle(grids grid.Grids, sigma, defectZPos float64, epsilonX, epsilonY []float64) (*Model, error) {
	return NewSingleAt(grids, sigma, defaultCenter(grids), defectZPos, epsilonX, epsilonY)
}

// NewSingleAt is NewSingle with an explicit in-plane center.
func NewSingleAt(grids grid.Grids, sigma float64, center [2]float64, defectZPos float64, epsilonX, epsilonY []float64) (*Model, error) {
	m := &Model{
		kind:       KindSingleGauss,
		grids:      grids,
		sigma:      sigma,
		defectZPos: defectZPos,
		center:     center,
		epsilonX:   append([]float64(nil), epsilonX...),
		epsilonY:   append([]float64(nil), epsilonY...),
	}
	if err := grids.Validate("charge.NewSingle"); err != nil {
		return nil, err
	}
	if !(sigma > 0) {
		return nil, errs.Config("charge.NewSingle", "sigma", sigma, "must be positive")
	}
	charges, err := gaussDensity(grids, sigma, [3]float64{center[0], center[1], defectZPos})
	if err != nil {
		return nil, err
	}
	m.charges = charges
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func defaultCenter(grids grid.Grids) [2]float64 {
	return [2]float64{grids[grid.X].Length() / 2, grids[grid.Y].Length() / 2}
}

// gaussDensity is a separable product of periodic 1D Gaussians, each
// normalised on its own axis, so the discrete integral is exactly one.
func gaussDensity(grids grid.Grids, sigma float64, center [3]float64) (*grid.Field3D, error) {
	var axes [3][]float64
	for a := 0; a < 3; a++ {
		g, err := distribution.Normalized(grids[a], center[a], sigma)
		if err != nil {
			return nil, fmt.Errorf("charge: axis %d: %w", a, err)
		}
		axes[a] = g
	}

	f := grid.NewField3D(grids.Dims())
	for i, gx := range axes[0] {
		for j, gy := range axes[1] {
			base := f.Index(i, j, 0)
			for k, gz := range axes[2] {
				f.Data[base+k] = gx * gy * gz
			}
		}
	}
	return f, nil
}

func (m *Model) validate() error {
	if err := m.grids.Validate("charge.New"); err != nil {
		return err
	}
	if !(m.sigma > 0) || math.IsInf(m.sigma, 0) {
		return errs.Config("charge.New", "sigma", m.sigma, "must be positive and finite")
	}
	if math.IsNaN(m.defectZPos) || math.IsInf(m.defectZPos, 0) {
		return errs.Config("charge.New", "defect_z_pos", m.defectZPos, "must be finite")
	}
	nz := m.grids[grid.Z].NumGrid()
	if len(m.epsilonX) != nz || len(m.epsilonY) != nz {
		return errs.Shape("charge.New", "epsilon profiles have %d and %d values, z grid has %d", len(m.epsilonX), len(m.epsilonY), nz)
	}
	for k := 0; k < nz; k++ {
		if !(m.epsilonX[k] > 0) {
			return errs.Config("charge.New", fmt.Sprintf("epsilon_x[%d]", k), m.epsilonX[k], "must be positive")
		}
		if !(m.epsilonY[k] > 0) {
			return errs.Config("charge.New", fmt.Sprintf("epsilon_y[%d]", k), m.epsilonY[k], "must be positive")
		}
	}
	if err := m.grids.Check("charge.New", m.charges); err != nil {
		return err
	}
	if !m.charges.IsFinite() {
		return errs.Degenerate("charge.New", "charges", "non-finite", "density must be finite")
	}
	return nil
}

func (m *Model) Kind() Kind             { return m.kind }
func (m *Model) Grids() grid.Grids      { return m.grids }
func (m *Model) Sigma() float64         { return m.sigma }
func (m *Model) DefectZPos() float64    { return m.defectZPos }
func (m *Model) Center() [2]float64     { return m.center }
func (m *Model) EpsilonX() []float64    { return append([]float64(nil), m.epsilonX...) }
func (m *Model) EpsilonY() []float64    { return append([]float64(nil), m.epsilonY...) }
func (m *Model) Charges() *grid.Field3D { return m.charges.Clone() }

// ChargeAt avoids cloning for hot loops.
func (m *Model) ChargeAt(i, j, k int) float64 { return m.charges.At(i, j, k) }

// TotalCharge is the discrete integral of the density in elementary charges.
func (m *Model) TotalCharge() float64 {
	return m.charges.Sum() * m.grids.VoxelVolume()
}

// PlaneAverage returns the xy-averaged density along z.
func (m *Model) PlaneAverage() []float64 {
	return m.charges.PlaneAverage()
}

// ReciprocalCharges is the unnormalised 3D FFT of the density, computed once.
// Callers must not modify the result.
func (m *Model) ReciprocalCharges() []complex128 {
	m.recipOnce.Do(func() {
		m.recip = analysis.FFT3(m.charges.Data, m.charges.Dims())
	})
	return m.recip
}

// Equal compares grids and metadata exactly and arrays within tol.
func (m *Model) Equal(o *Model, tol float64) bool {
	if o == nil || m.kind != o.kind || !m.grids.Equal(o.grids) {
		return false
	}
	if math.Abs(m.sigma-o.sigma) > tol || math.Abs(m.defectZPos-o.defectZPos) > tol ||
		math.Abs(m.center[0]-o.center[0]) > tol || math.Abs(m.center[1]-o.center[1]) > tol {
		return false
	}
	for k := range m.epsilonX {
		if math.Abs(m.epsilonX[k]-o.epsilonX[k]) > tol || math.Abs(m.epsilonY[k]-o.epsilonY[k]) > tol {
			return false
		}
	}
	return m.charges.EqualApprox(o.charges, tol)
}

// InPlaneNumGrid picks an even in-plane sample count whose spacing matches
// a z axis of length c sampled nz times.
func InPlaneNumGrid(a, c float64, nz int) int {
	return int(math.Ceil(a/c*float64(nz)/2)) * 2
}
