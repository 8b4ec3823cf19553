package grid

import (
	"encoding/json"
	"fmt"

	"github.com/san-kum/slabpot/internal/errs"
)

// Axis indices into Grids.
const (
	X = 0
	Y = 1
	Z = 2
)

// Grids spans the 3D cell. X and Y are in-plane, Z carries the slab.
type Grids [3]Grid

func NewGrids(x, y, z Grid) Grids {
	return Grids{x, y, z}
}

func (gs Grids) Dims() [3]int {
	return [3]int{gs[X].NumGrid(), gs[Y].NumGrid(), gs[Z].NumGrid()}
}

func (gs Grids) NumPoints() int {
	d := gs.Dims()
	return d[0] * d[1] * d[2]
}

// Volume assumes an orthogonal cell spanned by the three lengths.
func (gs Grids) Volume() float64 {
	return gs[X].Length() * gs[Y].Length() * gs[Z].Length()
}

func (gs Grids) VoxelVolume() float64 {
	return gs.Volume() / float64(gs.NumPoints())
}

func (gs Grids) XYArea() float64 {
	return gs[X].Length() * gs[Y].Length()
}

func (gs Grids) Equal(o Grids) bool {
	for i := range gs {
		if !gs[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

func (gs Grids) Validate(op string) error {
	for i := range gs {
		if err := gs[i].Validate(fmt.Sprintf("%s: axis %d", op, i)); err != nil {
			return err
		}
	}
	return nil
}

// Check returns an ErrShape error when f does not match the lattice.
func (gs Grids) Check(op string, f *Field3D) error {
	if f == nil {
		return errs.Shape(op, "missing field for grids %v", gs.Dims())
	}
	if f.Dims() != gs.Dims() {
		return errs.Shape(op, "field %v does not match grids %v", f.Dims(), gs.Dims())
	}
	return nil
}

func (gs Grids) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]Grid(gs))
}

func (gs *Grids) UnmarshalJSON(data []byte) error {
	var raw []Grid
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return errs.Shape("grid.Grids", "expected 3 grids, got %d", len(raw))
	}
	*gs = Grids{raw[0], raw[1], raw[2]}
	return nil
}
