// Package figure renders slab profiles to image files with gonum/plot. The
// output format follows the file extension (.png, .svg, .pdf, .eps).
package figure

import (
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/slabpot/internal/grid"
)

var palette = []color.Color{
	color.RGBA{R: 0, G: 0, B: 139, A: 255},
	color.RGBA{R: 220, G: 20, B: 60, A: 255},
	color.RGBA{R: 34, G: 139, B: 34, A: 255},
	color.RGBA{R: 255, G: 140, B: 0, A: 255},
	color.RGBA{R: 128, G: 0, B: 128, A: 255},
	color.Black,
}

// Panel is one figure of a profile plot.
type Panel struct {
	Title  string
	YLabel string
	// Prefixes selects the profiles whose name starts with any of them.
	Prefixes []string
}

// DefaultPanels groups the curves returned by slab.Model.Profiles.
var DefaultPanels = []Panel{
	{Title: "Dielectric profile", YLabel: "ε", Prefixes: []string{"ε_"}},
	{Title: "Model charge", YLabel: "λ (e/Å)", Prefixes: []string{"charge"}},
	{Title: "Potential", YLabel: "V", Prefixes: []string{"model potential", "fp potential"}},
	{Title: "Difference", YLabel: "V", Prefixes: []string{"fp - model"}},
}

// Select returns the profiles matching the panel.
func (p Panel) Select(profiles []grid.Profile) []grid.Profile {
	var out []grid.Profile
	for _, prof := range profiles {
		for _, pre := range p.Prefixes {
			if strings.HasPrefix(prof.Name, pre) {
				out = append(out, prof)
				break
			}
		}
	}
	return out
}

// Profiles draws profiles against z into one figure.
func Profiles(title, ylabel string, profiles []grid.Profile) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "z (Å)"
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	for i, prof := range profiles {
		if len(prof.X) != len(prof.Y) {
			return nil, fmt.Errorf("figure: profile %q has %d x and %d y values", prof.Name, len(prof.X), len(prof.Y))
		}
		pts := make(plotter.XYs, len(prof.X))
		for k := range prof.X {
			pts[k] = plotter.XY{X: prof.X[k], Y: prof.Y[k]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = palette[i%len(palette)]
		if i >= len(palette) {
			line.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		}
		p.Add(line)
		p.Legend.Add(prof.Name, line)
	}
	p.Legend.Top = true
	return p, nil
}

// Save renders one panel per non-empty selection, stacked vertically, to
// filename.
func Save(profiles []grid.Profile, panels []Panel, filename string) error {
	var plots []*plot.Plot
	for _, panel := range panels {
		sel := panel.Select(profiles)
		if len(sel) == 0 {
			continue
		}
		p, err := Profiles(panel.Title, panel.YLabel, sel)
		if err != nil {
			return err
		}
		plots = append(plots, p)
	}
	if len(plots) == 0 {
		return fmt.Errorf("figure: no profiles to draw")
	}
	if len(plots) == 1 {
		return plots[0].Save(6*vg.Inch, 4*vg.Inch, filename)
	}
	return saveStacked(plots, filename)
}
