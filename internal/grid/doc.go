// Package grid provides the uniform sampling lattices the slab model lives on.
//
//   - [Grid]: periodic 1D sampling of one Cartesian axis, [0, length)
//   - [Grids]: x, y, z triple spanning the 3D cell; z is the stacking axis
//   - [Field3D]: scalar values on a [Grids] lattice, x-major flattened
//
// # Example
//
//	z, _ := grid.New(20.0, 100, 1)
//	xy, _ := grid.New(2.5, 12, 1)
//	grids := grid.NewGrids(xy, xy, z)
//	rho := grid.NewField3D(grids.Dims())
//
// All values are immutable after construction; derived slices are copies.
package grid
