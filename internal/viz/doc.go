// Package viz renders slab results for the terminal: lipgloss styled
// panels for energies and asciigraph plots for profiles along z.
package viz
