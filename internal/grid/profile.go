package grid

// Profile is a named curve handed to plotting and export code.
type Profile struct {
	Name string
	X    []float64
	Y    []float64
}
