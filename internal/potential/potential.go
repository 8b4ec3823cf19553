package potential

import (
	"encoding/json"
	"fmt"

	"github.com/san-kum/slabpot/internal/errs"
	"github.com/san-kum/slabpot/internal/grid"
)

type Kind string

const (
	KindGaussCharge      Kind = "gauss_charge_potential"
	KindCalcSingleCharge Kind = "calc_single_charge_potential"
)

// SolverInfo records how a calculated potential was produced.
type SolverInfo struct {
	Workers       int     `json:"workers"`
	InPlaneCutoff float64 `json:"in_plane_cutoff"`
	SolvedModes   int     `json:"solved_modes"`
	ZeroMode      string  `json:"zero_mode"`
}

// ZeroModeAverage names the G = 0 convention used by Solve.
const ZeroModeAverage = "zero_cell_average"

type Potential struct {
	kind      Kind
	grids     grid.Grids
	potential *grid.Field3D
	solver    *SolverInfo
}

// New wraps an externally supplied potential array.
func New(grids grid.Grids, values *grid.Field3D) (*Potential, error) {
	if err := grids.Validate("potential.New"); err != nil {
		return nil, err
	}
	if err := grids.Check("potential.New", values); err != nil {
		return nil, err
	}
	if !values.IsFinite() {
		return nil, errs.Degenerate("potential.New", "potential", "non-finite", "values must be finite")
	}
	return &Potential{kind: KindGaussCharge, grids: grids, potential: values.Clone()}, nil
}

func (p *Potential) Kind() Kind              { return p.kind }
func (p *Potential) Grids() grid.Grids       { return p.grids }
func (p *Potential) Field() *grid.Field3D    { return p.potential.Clone() }
func (p *Potential) At(i, j, k int) float64  { return p.potential.At(i, j, k) }
func (p *Potential) PlaneAverage() []float64 { return p.potential.PlaneAverage() }

// Solver is nil unless the potential came from Solve.
func (p *Potential) Solver() *SolverInfo {
	if p.solver == nil {
		return nil
	}
	info := *p.solver
	return &info
}

func (p *Potential) Equal(o *Potential, tol float64) bool {
	return o != nil && p.kind == o.kind && p.grids.Equal(o.grids) && p.potential.EqualApprox(o.potential, tol)
}

type potentialDoc struct {
	Kind      Kind          `json:"kind"`
	Grids     grid.Grids    `json:"grids"`
	Potential *grid.Field3D `json:"potential"`
	Solver    *SolverInfo   `json:"solver,omitempty"`
}

func (p *Potential) MarshalJSON() ([]byte, error) {
	return json.Marshal(potentialDoc{Kind: p.kind, Grids: p.grids, Potential: p.potential, Solver: p.solver})
}

func (p *Potential) UnmarshalJSON(data []byte) error {
	var doc potentialDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	parsed, err := New(doc.Grids, doc.Potential)
	if err != nil {
		return err
	}
	switch doc.Kind {
	case KindGaussCharge, "":
	case KindCalcSingleCharge:
		if doc.Solver == nil {
			return fmt.Errorf("potential: %s requires solver info", KindCalcSingleCharge)
		}
		parsed.kind, parsed.solver = KindCalcSingleCharge, doc.Solver
	default:
		return fmt.Errorf("potential: unknown kind %q", doc.Kind)
	}
	*p = *parsed
	return nil
}
