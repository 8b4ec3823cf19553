// Package potential solves the generalised Poisson equation
//
//	∇·(ε(z)∇φ) = -ρ/ε₀
//
// for a smeared model charge inside a slab whose diagonal dielectric tensor
// varies along z, with periodic boundaries on all three axes.
//
// The density is Fourier transformed in 3D. Every in-plane wavevector
// (kx, ky) then couples only the z harmonics of its own column through the
// Fourier coefficients of ε(z):
//
//	Σ_g' [kx² ε̂x(g-g') + ky² ε̂y(g-g') + g g' ε̂z(g-g')] φ̂(g') = ρ̂(g)/ε₀
//
// Each column is a Hermitian positive-definite system solved independently by
// a bounded worker pool; columns related by k → -k are filled by conjugation.
// The G = 0 coefficient is fixed to zero, so the returned potential averages
// to zero over the cell (a compensating uniform background).
//
// Potentials are in volts for a unit positive charge; lengths are in Å.
//
// # Example
//
//	pot, err := potential.Solve(ctx, eps, model, potential.Options{Workers: 8})
//	avg := pot.PlaneAverage()
package potential
