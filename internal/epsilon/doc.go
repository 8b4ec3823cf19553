// Package epsilon models the dielectric tensor of a slab as a function of the
// stacking coordinate z.
//
// A [Distribution] stores the electronic (ε∞ - 1) and ionic contributions for
// the x, y and z diagonal components on a z [grid.Grid]. Derived quantities:
//
//	ion-clamped = electronic + 1
//	static      = ion-clamped + ionic
//	effective   = ion-clamped + ion-clamped² / ionic
//
// Two variants share the type, told apart by [Kind]: a plain tabulated
// distribution and a Gaussian-smeared one built by [NewGaussian], which also
// records the smearing center and width.
package epsilon
