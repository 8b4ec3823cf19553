// Package distribution builds the smeared one-dimensional profiles shared by
// the dielectric and charge models.
package distribution

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/slabpot/internal/errs"
	"github.com/san-kum/slabpot/internal/grid"
)

// imageSigmas is how many widths of tail are kept before an image is dropped.
const imageSigmas = 8.0

// Gaussian samples exp(-d²/2σ²) on g, summing over every periodic image of
// the center within imageSigmas·σ of a grid point.
func Gaussian(g grid.Grid, center, sigma float64) ([]float64, error) {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, errs.Config("distribution.Gaussian", "sigma", sigma, "must be positive and finite")
	}
	if math.IsNaN(center) || math.IsInf(center, 0) {
		return nil, errs.Config("distribution.Gaussian", "center", center, "must be finite")
	}

	l := g.Length()
	c := g.Wrap(center)
	images := int(math.Ceil(imageSigmas*sigma/l)) + 1

	pts := g.Points()
	out := make([]float64, len(pts))
	for i, z := range pts {
		sum := 0.0
		for n := -images; n <= images; n++ {
			d := z - c + float64(n)*l
			sum += math.Exp(-d * d / (2 * sigma * sigma))
		}
		out[i] = sum
	}
	return out, nil
}

// Normalized returns the Gaussian scaled so that its sum times the grid
// spacing is one.
func Normalized(g grid.Grid, center, sigma float64) ([]float64, error) {
	out, err := Gaussian(g, center, sigma)
	if err != nil {
		return nil, err
	}
	norm := floats.Sum(out) * g.Spacing()
	if norm == 0 {
		return nil, errs.Degenerate("distribution.Normalized", "sigma", sigma, "gaussian vanishes on every grid point")
	}
	floats.Scale(1/norm, out)
	return out, nil
}

// Rescale returns dist scaled so that its grid average equals average.
func Rescale(dist []float64, average float64) ([]float64, error) {
	if len(dist) == 0 {
		return nil, errs.Shape("distribution.Rescale", "empty distribution")
	}
	mean := stat.Mean(dist, nil)
	if mean == 0 || math.IsNaN(mean) {
		return nil, errs.Degenerate("distribution.Rescale", "mean", mean, "cannot rescale to average %g", average)
	}
	out := make([]float64, len(dist))
	floats.ScaleTo(out, average/mean, dist)
	return out, nil
}
