package slab

import (
	"fmt"
	"math"
	"strings"
	"text/tabwriter"
)

// Energy holds the electrostatic terms of one slab model, all in eV except
// AlignmentPotential (V) and FarZ, Window (Å).
type Energy struct {
	Charge             float64 `json:"charge"`
	Electrostatic      float64 `json:"electrostatic"`
	AlignmentPotential float64 `json:"alignment_potential"`
	Alignment          float64 `json:"alignment"`
	Flatness           float64 `json:"flatness"`
	FarZ               float64 `json:"far_z"`
	Window             float64 `json:"window"`
}

// Correction returns the energy to add to a raw defect energy given the
// isolated-defect electrostatic energy.
func (e *Energy) Correction(isolated float64) float64 {
	return isolated - e.Electrostatic + e.Alignment
}

func (e *Energy) finite() bool {
	for _, v := range []float64{e.Electrostatic, e.AlignmentPotential, e.Alignment, e.Flatness} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (e *Energy) String() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "charge\t%g\n", e.Charge)
	fmt.Fprintf(w, "electrostatic energy\t%.4f eV\n", e.Electrostatic)
	fmt.Fprintf(w, "alignment potential\t%.4f V\n", e.AlignmentPotential)
	fmt.Fprintf(w, "alignment energy\t%.4f eV\n", e.Alignment)
	fmt.Fprintf(w, "flatness (std)\t%.4f V\n", e.Flatness)
	fmt.Fprintf(w, "far region\t%.2f ± %.2f Å\n", e.FarZ, e.Window)
	w.Flush()
	return strings.TrimRight(sb.String(), "\n")
}
