package potential

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/slabpot/internal/errs"
	"github.com/san-kum/slabpot/internal/grid"
)

// KindFP1d tags first-principles planar potentials in JSON.
const KindFP1d = "fp_1d_potential"

// FP1dPotential is a planar-averaged first-principles potential along z,
// already sign-flipped so it compares directly with a model potential.
type FP1dPotential struct {
	grid   grid.Grid
	values []float64
}

func NewFP1d(g grid.Grid, values []float64) (*FP1dPotential, error) {
	if err := g.Validate("potential.NewFP1d"); err != nil {
		return nil, err
	}
	if len(values) != g.NumGrid() {
		return nil, errs.Shape("potential.NewFP1d", "grid has %d points, got %d values", g.NumGrid(), len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errs.Degenerate("potential.NewFP1d", fmt.Sprintf("values[%d]", i), v, "must be finite")
		}
	}
	return &FP1dPotential{grid: g, values: append([]float64(nil), values...)}, nil
}

// NewFP1dPotentialFromAverages builds the difference profile -(defect - perfect)
// on a grid of the given length.
func NewFP1dPotentialFromAverages(length float64, defect, perfect []float64) (*FP1dPotential, error) {
	if len(defect) != len(perfect) {
		return nil, errs.Inconsistent("potential.NewFP1dPotentialFromAverages",
			"defect has %d grid points but perfect has %d", len(defect), len(perfect))
	}
	g, err := grid.New(length, len(defect), 1)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(defect))
	floats.SubTo(values, perfect, defect)
	return NewFP1d(g, values)
}

func (f *FP1dPotential) Grid() grid.Grid   { return f.grid }
func (f *FP1dPotential) Points() []float64 { return f.grid.Points() }
func (f *FP1dPotential) Values() []float64 { return append([]float64(nil), f.values...) }

func (f *FP1dPotential) Equal(o *FP1dPotential, tol float64) bool {
	return o != nil && f.grid.Equal(o.grid) && floats.EqualApprox(f.values, o.values, tol)
}

type fpDoc struct {
	Kind      string    `json:"kind"`
	Grid      grid.Grid `json:"grid"`
	Potential []float64 `json:"potential"`
}

func (f *FP1dPotential) MarshalJSON() ([]byte, error) {
	return json.Marshal(fpDoc{Kind: KindFP1d, Grid: f.grid, Potential: f.values})
}

func (f *FP1dPotential) UnmarshalJSON(data []byte) error {
	var doc fpDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind != "" && doc.Kind != KindFP1d {
		return fmt.Errorf("potential: unknown kind %q", doc.Kind)
	}
	parsed, err := NewFP1d(doc.Grid, doc.Potential)
	if err != nil {
		return err
	}
	*f = *parsed
	return nil
}
