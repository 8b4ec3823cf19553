package export

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/san-kum/slabpot/internal/grid"
)

func TestProfilesToSVG(t *testing.T) {
	profiles := []grid.Profile{
		{Name: "model potential", X: []float64{0, 1, 2, 3}, Y: []float64{0, 1, 0.5, 0}},
		{Name: "fp < model", X: []float64{0, 1, 2, 3}, Y: []float64{0.2, 0.2, 0.2, 0.2}},
		{Name: "single", X: []float64{1}, Y: []float64{1}},
	}

	svg := ProfilesToSVG(profiles, 400, 200)
	if svg == "" {
		t.Fatal("expected svg output")
	}
	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("expected 2 paths, got %d", got)
	}
	if !strings.Contains(svg, "fp &lt; model") {
		t.Error("expected escaped legend text")
	}

	dec := xml.NewDecoder(strings.NewReader(svg))
	for {
		_, err := dec.Token()
		if err != nil {
			if err != io.EOF {
				t.Fatalf("invalid xml: %v", err)
			}
			break
		}
	}
}

func TestProfilesToSVGEmpty(t *testing.T) {
	if ProfilesToSVG(nil, 100, 100) != "" {
		t.Error("expected empty output without profiles")
	}
	if ProfilesToSVG([]grid.Profile{{Name: "p", X: []float64{0}, Y: []float64{0}}}, 100, 100) != "" {
		t.Error("expected empty output for a single point")
	}
}
