package epsilon

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/san-kum/slabpot/internal/grid"
)

var directions = [3]string{"x", "y", "z"}

func (d *Distribution) String() string {
	var sb strings.Builder
	if d.kind == KindGaussian {
		fmt.Fprintf(&sb, "center: %.2f Å\n", d.center)
		fmt.Fprintf(&sb, "sigma: %.2f Å\n", d.sigma)
	}

	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := []string{"pos (Å)"}
	for _, e := range []string{"ε_inf", "ε_ion", "ε_0"} {
		for _, dir := range directions {
			header = append(header, e+"_"+dir)
		}
	}
	fmt.Fprintln(w, strings.Join(header, "\t")+"\t")

	clamped, static := d.IonClamped(), d.Static()
	for k, pos := range d.grid.Points() {
		row := []string{fmt.Sprintf("%.2f", pos)}
		for _, t := range []Tensor{clamped, d.ionic, static} {
			for i := 0; i < 3; i++ {
				row = append(row, fmt.Sprintf("%.2f", t[i][k]))
			}
		}
		fmt.Fprintln(w, strings.Join(row, "\t")+"\t")
	}
	w.Flush()
	return strings.TrimRight(sb.String(), "\n")
}

// Profiles returns ε_inf, ε_ion and ε_0 for every direction.
func (d *Distribution) Profiles() []grid.Profile {
	pts := d.grid.Points()
	var out []grid.Profile
	for _, item := range []struct {
		name string
		t    Tensor
	}{{"ε_inf", d.IonClamped()}, {"ε_ion", d.ionic}, {"ε_0", d.Static()}} {
		for i, dir := range directions {
			out = append(out, grid.Profile{Name: item.name + "_" + dir, X: pts, Y: append([]float64(nil), item.t[i]...)})
		}
	}
	return out
}

type distributionDoc struct {
	Kind       Kind      `json:"kind"`
	Grid       grid.Grid `json:"grid"`
	Electronic Tensor    `json:"electronic"`
	Ionic      Tensor    `json:"ionic"`
	Center     *float64  `json:"center,omitempty"`
	Sigma      *float64  `json:"sigma,omitempty"`
}

func (d *Distribution) MarshalJSON() ([]byte, error) {
	doc := distributionDoc{Kind: d.kind, Grid: d.grid, Electronic: d.electronic, Ionic: d.ionic}
	if d.kind == KindGaussian {
		doc.Center, doc.Sigma = &d.center, &d.sigma
	}
	return json.Marshal(doc)
}

func (d *Distribution) UnmarshalJSON(data []byte) error {
	var doc distributionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	parsed := &Distribution{grid: doc.Grid, electronic: doc.Electronic, ionic: doc.Ionic}
	switch doc.Kind {
	case KindTabulated, "":
		parsed.kind = KindTabulated
	case KindGaussian:
		if doc.Center == nil || doc.Sigma == nil {
			return fmt.Errorf("epsilon: %s requires center and sigma", KindGaussian)
		}
		parsed.kind, parsed.center, parsed.sigma = KindGaussian, *doc.Center, *doc.Sigma
	default:
		return fmt.Errorf("epsilon: unknown kind %q", doc.Kind)
	}
	if err := parsed.validate(); err != nil {
		return err
	}

	d.kind, d.grid, d.electronic, d.ionic = parsed.kind, parsed.grid, parsed.electronic, parsed.ionic
	d.center, d.sigma = parsed.center, parsed.sigma
	d.recipOnce, d.recip = sync.Once{}, [3][]complex128{}
	return nil
}
