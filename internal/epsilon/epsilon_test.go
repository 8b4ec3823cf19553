package epsilon

import (
	"encoding/json"
	"errors"
	"math"
	"math/cmplx"
	"strings"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/slabpot/internal/errs"
	"github.com/san-kum/slabpot/internal/grid"
)

func referenceDistribution(t *testing.T) *Distribution {
	t.Helper()
	electronic := Tensor{
		{1.0, 1.0, 1.0, 1.5, 2.0, 2.0, 2.0, 1.5, 1.0, 1.0},
		{1.0, 1.0, 1.0, 2.5, 4.0, 4.0, 4.0, 2.5, 1.0, 1.0},
		{1.0, 1.0, 1.0, 3.5, 6.0, 6.0, 6.0, 3.5, 1.0, 1.0},
	}
	ionic := Tensor{
		{0.0, 0.0, 0.0, 0.5, 1.0, 1.0, 1.0, 0.5, 0.0, 0.0},
		{0.0, 0.0, 0.0, 1.5, 3.0, 3.0, 3.0, 1.5, 0.0, 0.0},
		{0.0, 0.0, 0.0, 2.5, 5.0, 5.0, 5.0, 2.5, 0.0, 0.0},
	}
	d, err := New(grid.MustNew(10.0, 10, 1), electronic, ionic)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return d
}

func TestDerivedProfiles(t *testing.T) {
	d := referenceDistribution(t)
	electronic, ionic := d.Electronic(), d.Ionic()
	clamped, static := d.IonClamped(), d.Static()

	for i := 0; i < 3; i++ {
		for k := range electronic[i] {
			if clamped[i][k] != electronic[i][k]+1 {
				t.Errorf("ion_clamped[%d][%d] = %f, want %f", i, k, clamped[i][k], electronic[i][k]+1)
			}
			if math.Abs(static[i][k]-(clamped[i][k]+ionic[i][k])) > 1e-12 {
				t.Errorf("static[%d][%d] = %f, want %f", i, k, static[i][k], clamped[i][k]+ionic[i][k])
			}
		}
	}
}

func TestEffective(t *testing.T) {
	d := referenceDistribution(t)
	if _, err := d.Effective(); !errors.Is(err, errs.ErrDegenerate) {
		t.Errorf("expected ErrDegenerate with zero ionic response, got %v", err)
	}

	g := grid.MustNew(4.0, 2, 1)
	d2, err := New(g, Tensor{{1, 1}, {1, 1}, {1, 1}}, Tensor{{2, 2}, {2, 2}, {2, 2}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	eff, err := d2.Effective()
	if err != nil {
		t.Fatalf("Effective failed: %v", err)
	}
	// clamped 2, ionic 2: 2 + 4/2 = 4
	if eff[0][0] != 4 {
		t.Errorf("expected effective 4, got %f", eff[0][0])
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	g := grid.MustNew(4.0, 2, 1)

	_, err := New(g, Tensor{{1}, {1, 1}, {1, 1}}, Tensor{{0, 0}, {0, 0}, {0, 0}})
	if !errors.Is(err, errs.ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}

	_, err = New(g, Tensor{{-3, 1}, {1, 1}, {1, 1}}, Tensor{{0, 0}, {0, 0}, {0, 0}})
	if !errors.Is(err, errs.ErrConfig) {
		t.Errorf("expected ErrConfig for negative static response, got %v", err)
	}

	_, err = NewGaussian(g, [3]float64{1, 1, 1}, [3]float64{1, 1, 1}, 0, 0)
	if !errors.Is(err, errs.ErrConfig) {
		t.Errorf("expected ErrConfig for zero sigma, got %v", err)
	}
}

func TestNewGaussianAverages(t *testing.T) {
	ele := [3]float64{2.0, 2.5, 1.2}
	ion := [3]float64{3.0, 3.5, 0.4}

	for _, center := range []float64{0.0, 5.0, 10.0, 13.3} {
		for _, mul := range []int{1, 2} {
			g := grid.MustNew(10.0, 10, mul)
			d, err := NewGaussian(g, ele, ion, center, 1.0)
			if err != nil {
				t.Fatalf("NewGaussian failed: %v", err)
			}
			aveEle, aveIon := d.AveElectronic(), d.AveIonic()
			for i := 0; i < 3; i++ {
				if math.Abs(aveEle[i]-ele[i]/float64(mul)) > 1e-12 {
					t.Errorf("center=%f mul=%d: electronic[%d] average %f, want %f", center, mul, i, aveEle[i], ele[i]/float64(mul))
				}
				if math.Abs(aveIon[i]-ion[i]/float64(mul)) > 1e-12 {
					t.Errorf("center=%f mul=%d: ionic[%d] average %f, want %f", center, mul, i, aveIon[i], ion[i]/float64(mul))
				}
			}
		}
	}
}

func TestNewGaussianShape(t *testing.T) {
	d, err := NewGaussian(grid.MustNew(10.0, 20, 1), [3]float64{1, 2, 3}, [3]float64{1, 1, 1}, 5.0, 1.0)
	if err != nil {
		t.Fatalf("NewGaussian failed: %v", err)
	}
	e := d.Electronic()
	// x and y profiles are proportional with ratio 2.
	for k := range e[0] {
		if math.Abs(e[1][k]-2*e[0][k]) > 1e-12 {
			t.Fatalf("index %d: profiles not proportional", k)
		}
	}
	if peak := e[0][10]; peak <= e[0][0] {
		t.Errorf("expected peak at the center, got %f at center vs %f at edge", peak, e[0][0])
	}
	if d.Kind() != KindGaussian || d.Center() != 5.0 || d.Sigma() != 1.0 {
		t.Errorf("unexpected gaussian metadata: %s %f %f", d.Kind(), d.Center(), d.Sigma())
	}
}

func TestReciprocalStatic(t *testing.T) {
	d := referenceDistribution(t)
	recip := d.ReciprocalStatic()
	static := d.Static()

	for i := 0; i < 3; i++ {
		if len(recip[i]) != 10 {
			t.Fatalf("expected 10 coefficients, got %d", len(recip[i]))
		}
		want := stat.Mean(static[i], nil) * 10
		if cmplx.Abs(recip[i][0]-complex(want, 0)) > 1e-10 {
			t.Errorf("G=0 coefficient %v, want %f", recip[i][0], want)
		}
	}

	again := d.ReciprocalStatic()
	if &again[0][0] != &recip[0][0] {
		t.Error("expected memoised coefficients")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	tab := referenceDistribution(t)
	gauss, err := NewGaussian(grid.MustNew(10.0, 10, 2), [3]float64{2, 2, 2}, [3]float64{3, 3, 3}, 5.0, 1.0)
	if err != nil {
		t.Fatalf("NewGaussian failed: %v", err)
	}

	for _, d := range []*Distribution{tab, gauss} {
		data, err := json.Marshal(d)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		var back Distribution
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if !back.Equal(d) {
			t.Errorf("%s: round trip mismatch", d.Kind())
		}
	}

	if tab.Equal(gauss) {
		t.Error("different kinds compared equal")
	}
}

func TestUnmarshalRejectsUnknownKind(t *testing.T) {
	var d Distribution
	err := json.Unmarshal([]byte(`{"kind":"nope","grid":{"base_length":1,"base_num_grid":1,"mul":1},"electronic":[[0],[0],[0]],"ionic":[[0],[0],[0]]}`), &d)
	if err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestStringTable(t *testing.T) {
	gauss, err := NewGaussian(grid.MustNew(10.0, 10, 1), [3]float64{2, 2, 2}, [3]float64{3, 3, 3}, 5.0, 1.0)
	if err != nil {
		t.Fatalf("NewGaussian failed: %v", err)
	}
	s := gauss.String()

	if !strings.HasPrefix(s, "center: 5.00 Å\nsigma: 1.00 Å") {
		t.Errorf("unexpected header: %q", s[:40])
	}
	if lines := strings.Split(s, "\n"); len(lines) != 2+1+10 {
		t.Errorf("expected 13 lines, got %d", len(lines))
	}
	if len(gauss.Profiles()) != 9 {
		t.Errorf("expected 9 profiles, got %d", len(gauss.Profiles()))
	}
}

func TestUnmarshalRejectsMissingGrid(t *testing.T) {
	var d Distribution
	err := json.Unmarshal([]byte(`{"kind":"epsilon_distribution","electronic":[[],[],[]],"ionic":[[],[],[]]}`), &d)
	if !errors.Is(err, errs.ErrConfig) {
		t.Errorf("expected ErrConfig for a document without grid, got %v", err)
	}

	if _, err := New(grid.Grid{}, Tensor{}, Tensor{}); !errors.Is(err, errs.ErrConfig) {
		t.Errorf("expected ErrConfig for the zero grid, got %v", err)
	}
}

func TestUnmarshalResetsReciprocalCache(t *testing.T) {
	d := referenceDistribution(t)
	before := d.ReciprocalStatic()

	other, err := NewGaussian(grid.MustNew(10.0, 10, 1), [3]float64{2, 2, 2}, [3]float64{3, 3, 3}, 5.0, 1.0)
	if err != nil {
		t.Fatalf("NewGaussian failed: %v", err)
	}
	data, err := json.Marshal(other)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := json.Unmarshal(data, d); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	after, want := d.ReciprocalStatic(), other.ReciprocalStatic()
	for i := 0; i < 3; i++ {
		for k := range want[i] {
			if cmplx.Abs(after[i][k]-want[i][k]) > 1e-10 {
				t.Fatalf("direction %d mode %d: got %v, want %v (stale %v)", i, k, after[i][k], want[i][k], before[i][k])
			}
		}
	}
}
