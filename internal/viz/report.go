package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/slabpot/internal/grid"
	"github.com/san-kum/slabpot/internal/slab"
)

// FlatnessWarn is the far-region standard deviation (V) above which the
// alignment is flagged as unconverged.
const FlatnessWarn = 0.05

func metric(label, value string) string {
	return MetricLabel.Render(fmt.Sprintf("%-22s", label)) + MetricValue.Render(value)
}

// EnergyPanel renders e inside a bordered panel.
func EnergyPanel(e *slab.Energy) string {
	rows := []string{
		Title.Render("electrostatic energy"),
		"",
		metric("charge", fmt.Sprintf("%+g", e.Charge)),
		metric("E_per", fmt.Sprintf("%.4f eV", e.Electrostatic)),
		metric("ΔV (far region)", fmt.Sprintf("%.4f V", e.AlignmentPotential)),
		metric("alignment -qΔV", fmt.Sprintf("%.4f eV", e.Alignment)),
		metric("flatness", fmt.Sprintf("%.4f V", e.Flatness)),
		metric("far region", fmt.Sprintf("%.2f ± %.2f Å", e.FarZ, e.Window)),
	}
	if e.Flatness > FlatnessWarn {
		rows = append(rows, "", Warning.Render("difference profile is not flat far from the defect"))
	}
	return Panel.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// ProfileGraph plots p with asciigraph. X values are assumed evenly spaced.
func ProfileGraph(p grid.Profile, width, height int) string {
	if len(p.Y) == 0 {
		return Subtle.Render(p.Name + ": no data")
	}
	caption := p.Name
	if len(p.X) > 1 {
		caption = fmt.Sprintf("%s (z = %.2f … %.2f Å)", p.Name, p.X[0], p.X[len(p.X)-1])
	}
	return asciigraph.Plot(p.Y,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// SparklineChart renders a one-line sketch of values.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := min(max(int(norm*float64(len(chars)-1)), 0), len(chars)-1)

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(SparkMid.Render(c))
		default:
			result.WriteString(SparkLow.Render(c))
		}
	}
	return result.String()
}
