package epsilon

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/slabpot/internal/analysis"
	"github.com/san-kum/slabpot/internal/distribution"
	"github.com/san-kum/slabpot/internal/errs"
	"github.com/san-kum/slabpot/internal/grid"
)

type Kind string

const (
	KindTabulated Kind = "epsilon_distribution"
	KindGaussian  Kind = "epsilon_gaussian_distribution"
)

// Tolerance used by Equal.
const Tolerance = 1e-7

// Tensor holds one profile per Cartesian direction.
type Tensor [3][]float64

func (t Tensor) clone() Tensor {
	var c Tensor
	for i := range t {
		c[i] = append([]float64(nil), t[i]...)
	}
	return c
}

type Distribution struct {
	kind       Kind
	grid       grid.Grid
	electronic Tensor
	ionic      Tensor
	center     float64
	sigma      float64

	recipOnce sync.Once
	recip     [3][]complex128
}

// New builds a tabulated distribution. Every profile must have one value per
// grid point and the static response must be positive everywhere.
func New(g grid.Grid, electronic, ionic Tensor) (*Distribution, error) {
	d := &Distribution{kind: KindTabulated, grid: g, electronic: electronic.clone(), ionic: ionic.clone()}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewGaussian rescales one periodic Gaussian bump centered at center to each
// target average. Targets are divided by the grid multiplier so that the
// physical average over the original cell is kept.
func NewGaussian(g grid.Grid, aveElectronic, aveIonic [3]float64, center, sigma float64) (*Distribution, error) {
	bump, err := distribution.Gaussian(g, center, sigma)
	if err != nil {
		return nil, fmt.Errorf("epsilon.NewGaussian: %w", err)
	}

	mul := float64(g.Mul())
	var electronic, ionic Tensor
	for i := 0; i < 3; i++ {
		if electronic[i], err = distribution.Rescale(bump, aveElectronic[i]/mul); err != nil {
			return nil, err
		}
		if ionic[i], err = distribution.Rescale(bump, aveIonic[i]/mul); err != nil {
			return nil, err
		}
	}

	d := &Distribution{kind: KindGaussian, grid: g, electronic: electronic, ionic: ionic, center: center, sigma: sigma}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Distribution) validate() error {
	if err := d.grid.Validate("epsilon.New"); err != nil {
		return err
	}
	n := d.grid.NumGrid()
	for i := 0; i < 3; i++ {
		if len(d.electronic[i]) != n {
			return errs.Shape("epsilon.New", "electronic[%d] has %d values, grid has %d", i, len(d.electronic[i]), n)
		}
		if len(d.ionic[i]) != n {
			return errs.Shape("epsilon.New", "ionic[%d] has %d values, grid has %d", i, len(d.ionic[i]), n)
		}
	}
	if d.kind == KindGaussian && !(d.sigma > 0) {
		return errs.Config("epsilon.New", "sigma", d.sigma, "must be positive")
	}

	static := d.Static()
	for i := 0; i < 3; i++ {
		for k, v := range static[i] {
			if !(v > 0) || math.IsInf(v, 0) {
				return errs.Config("epsilon.New", fmt.Sprintf("static[%d][%d]", i, k), v, "dielectric response must be positive")
			}
		}
	}
	return nil
}

func (d *Distribution) Kind() Kind         { return d.kind }
func (d *Distribution) Grid() grid.Grid    { return d.grid }
func (d *Distribution) Center() float64    { return d.center }
func (d *Distribution) Sigma() float64     { return d.sigma }
func (d *Distribution) Electronic() Tensor { return d.electronic.clone() }
func (d *Distribution) Ionic() Tensor      { return d.ionic.clone() }
func (d *Distribution) IsGaussian() bool   { return d.kind == KindGaussian }
func (d *Distribution) NumGrid() int       { return d.grid.NumGrid() }
func (d *Distribution) Points() []float64  { return d.grid.Points() }

func (d *Distribution) IonClamped() Tensor {
	out := d.electronic.clone()
	for i := range out {
		floats.AddConst(1, out[i])
	}
	return out
}

func (d *Distribution) Static() Tensor {
	out := d.IonClamped()
	for i := range out {
		floats.Add(out[i], d.ionic[i])
	}
	return out
}

// Effective fails with ErrDegenerate where the ionic response vanishes.
func (d *Distribution) Effective() (Tensor, error) {
	clamped := d.IonClamped()
	var out Tensor
	for i := range clamped {
		out[i] = make([]float64, len(clamped[i]))
		for k, c := range clamped[i] {
			ion := d.ionic[i][k]
			if ion == 0 {
				return Tensor{}, errs.Degenerate("epsilon.Effective", fmt.Sprintf("ionic[%d][%d]", i, k), ion, "effective response diverges")
			}
			out[i][k] = c + c*c/ion
		}
	}
	return out, nil
}

func (d *Distribution) AveElectronic() [3]float64 { return average(d.electronic) }
func (d *Distribution) AveIonic() [3]float64      { return average(d.ionic) }

func average(t Tensor) [3]float64 {
	var out [3]float64
	for i := range t {
		out[i] = stat.Mean(t[i], nil)
	}
	return out
}

// ReciprocalStatic is the unnormalised FFT of each static profile along z.
// It is computed once per instance; callers must not modify the result.
func (d *Distribution) ReciprocalStatic() [3][]complex128 {
	d.recipOnce.Do(func() {
		static := d.Static()
		for i := range static {
			d.recip[i] = analysis.FFT(static[i])
		}
	})
	return d.recip
}

// Equal compares grids exactly and profiles within Tolerance.
func (d *Distribution) Equal(o *Distribution) bool {
	if o == nil || d.kind != o.kind || !d.grid.Equal(o.grid) {
		return false
	}
	if d.kind == KindGaussian &&
		(math.Abs(d.center-o.center) > Tolerance || math.Abs(d.sigma-o.sigma) > Tolerance) {
		return false
	}
	for i := 0; i < 3; i++ {
		if !floats.EqualApprox(d.electronic[i], o.electronic[i], Tolerance) ||
			!floats.EqualApprox(d.ionic[i], o.ionic[i], Tolerance) {
			return false
		}
	}
	return true
}
