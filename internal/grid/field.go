package grid

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/slabpot/internal/errs"
)

// Field3D holds one real value per grid point, flattened with z fastest.
type Field3D struct {
	Nx, Ny, Nz int
	Data       []float64
}

func NewField3D(dims [3]int) *Field3D {
	return &Field3D{Nx: dims[0], Ny: dims[1], Nz: dims[2], Data: make([]float64, dims[0]*dims[1]*dims[2])}
}

// FieldFrom wraps nested [x][y][z] values, checking that the array is rectangular.
func FieldFrom(values [][][]float64) (*Field3D, error) {
	nx := len(values)
	if nx == 0 || len(values[0]) == 0 || len(values[0][0]) == 0 {
		return nil, errs.Shape("grid.FieldFrom", "empty array")
	}
	ny, nz := len(values[0]), len(values[0][0])
	f := NewField3D([3]int{nx, ny, nz})
	for i := range values {
		if len(values[i]) != ny {
			return nil, errs.Shape("grid.FieldFrom", "row %d has %d y entries, want %d", i, len(values[i]), ny)
		}
		for j := range values[i] {
			if len(values[i][j]) != nz {
				return nil, errs.Shape("grid.FieldFrom", "column (%d,%d) has %d z entries, want %d", i, j, len(values[i][j]), nz)
			}
			copy(f.Data[f.Index(i, j, 0):], values[i][j])
		}
	}
	return f, nil
}

func (f *Field3D) Dims() [3]int { return [3]int{f.Nx, f.Ny, f.Nz} }

func (f *Field3D) Index(i, j, k int) int { return (i*f.Ny+j)*f.Nz + k }

func (f *Field3D) At(i, j, k int) float64 { return f.Data[f.Index(i, j, k)] }

func (f *Field3D) Set(i, j, k int, v float64) { f.Data[f.Index(i, j, k)] = v }

func (f *Field3D) Clone() *Field3D {
	c := &Field3D{Nx: f.Nx, Ny: f.Ny, Nz: f.Nz, Data: make([]float64, len(f.Data))}
	copy(c.Data, f.Data)
	return c
}

func (f *Field3D) Sum() float64 { return floats.Sum(f.Data) }

// PlaneAverage averages over x and y for every z index.
func (f *Field3D) PlaneAverage() []float64 {
	avg := make([]float64, f.Nz)
	for i := 0; i < f.Nx; i++ {
		for j := 0; j < f.Ny; j++ {
			floats.Add(avg, f.Data[f.Index(i, j, 0):f.Index(i, j, 0)+f.Nz])
		}
	}
	floats.Scale(1/float64(f.Nx*f.Ny), avg)
	return avg
}

// IsFinite reports whether no value is NaN or Inf.
func (f *Field3D) IsFinite() bool {
	for _, v := range f.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (f *Field3D) EqualApprox(o *Field3D, tol float64) bool {
	if o == nil || f.Dims() != o.Dims() {
		return false
	}
	return floats.EqualApprox(f.Data, o.Data, tol)
}

type fieldDoc struct {
	Shape [3]int    `json:"shape"`
	Data  []float64 `json:"data"`
}

func (f *Field3D) MarshalJSON() ([]byte, error) {
	return json.Marshal(fieldDoc{Shape: f.Dims(), Data: f.Data})
}

func (f *Field3D) UnmarshalJSON(data []byte) error {
	var doc fieldDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	s := doc.Shape
	if s[0] < 1 || s[1] < 1 || s[2] < 1 || len(doc.Data) != s[0]*s[1]*s[2] {
		return errs.Shape("grid.Field3D", "shape %v does not hold %d values", s, len(doc.Data))
	}
	*f = Field3D{Nx: s[0], Ny: s[1], Nz: s[2], Data: doc.Data}
	return nil
}
