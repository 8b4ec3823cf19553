package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/slabpot/internal/charge"
	"github.com/san-kum/slabpot/internal/epsilon"
	"github.com/san-kum/slabpot/internal/grid"
	"github.com/san-kum/slabpot/internal/potential"
	"github.com/san-kum/slabpot/internal/slab"
)

func TestSaveListLoad(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "data"))

	zg := grid.MustNew(10.0, 10, 1)
	eps, err := epsilon.NewGaussian(zg, [3]float64{2, 2, 2}, [3]float64{3, 3, 3}, 5.0, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	static := eps.Static()
	xy := grid.MustNew(1.0, 2, 1)
	cm, err := charge.NewSingle(grid.NewGrids(xy, xy, zg), 1.0, 5.0, static[0], static[1])
	if err != nil {
		t.Fatal(err)
	}
	fp, err := potential.NewFP1dPotentialFromAverages(10.0, make([]float64, 10), make([]float64, 10))
	if err != nil {
		t.Fatal(err)
	}

	for name, v := range map[string]any{EpsilonName: eps, ChargeModelName: cm, FPName: fp} {
		if _, err := s.Save(name, v); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	kinds := map[string]string{}
	for _, e := range entries {
		kinds[e.Name] = e.Kind
	}
	if kinds[EpsilonName] != string(epsilon.KindGaussian) {
		t.Errorf("expected kind %s, got %s", epsilon.KindGaussian, kinds[EpsilonName])
	}
	if kinds[ChargeModelName] != string(charge.KindSingleGauss) {
		t.Errorf("expected kind %s, got %s", charge.KindSingleGauss, kinds[ChargeModelName])
	}
	if kinds[FPName] != potential.KindFP1d {
		t.Errorf("expected kind %s, got %s", potential.KindFP1d, kinds[FPName])
	}

	loadedEps, err := s.LoadEpsilon(EpsilonName)
	if err != nil {
		t.Fatal(err)
	}
	if !loadedEps.Equal(eps) {
		t.Error("epsilon mismatch after reload")
	}
	loadedCM, err := s.LoadChargeModel(ChargeModelName)
	if err != nil {
		t.Fatal(err)
	}
	if !loadedCM.Equal(cm, 1e-12) {
		t.Error("charge model mismatch after reload")
	}
	loadedFP, err := s.LoadFP(FPName)
	if err != nil {
		t.Fatal(err)
	}
	if !loadedFP.Equal(fp, 0) {
		t.Error("fp potential mismatch after reload")
	}

	if _, err := s.LoadPotential(PotentialName); err == nil {
		t.Error("expected error for missing document")
	}
	if _, err := s.LoadEpsilon(ChargeModelName); err == nil {
		t.Error("expected error decoding a charge model as epsilon")
	}
}

func TestListMissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "absent"))
	entries, err := s.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestEnergyRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	e := &slab.Energy{Charge: -2, Electrostatic: 0.75, AlignmentPotential: 0.1, Alignment: 0.2, Flatness: 0.01, FarZ: 10, Window: 2}
	if _, err := s.Save(EnergyName, e); err != nil {
		t.Fatal(err)
	}
	back, err := s.LoadEnergy(EnergyName)
	if err != nil {
		t.Fatal(err)
	}
	if *back != *e {
		t.Errorf("expected %+v, got %+v", e, back)
	}
}

func TestProfilesCSV(t *testing.T) {
	s := New(t.TempDir())
	profiles := []grid.Profile{
		{Name: "ε_0_z", X: []float64{0, 1, 2}, Y: []float64{1, 4.5, 1}},
		{Name: "fp - model", X: []float64{0, 0.5}, Y: []float64{0.125, -0.25}},
	}
	path, err := s.SaveProfilesCSV(ProfilesName, profiles)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(path) != ".csv" {
		t.Errorf("expected csv path, got %s", path)
	}

	back, err := s.LoadProfilesCSV(ProfilesName)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(back))
	}
	for i, p := range profiles {
		if back[i].Name != p.Name {
			t.Errorf("expected name %s, got %s", p.Name, back[i].Name)
		}
		for k := range p.Y {
			if back[i].X[k] != p.X[k] || back[i].Y[k] != p.Y[k] {
				t.Errorf("%s[%d]: expected (%g, %g), got (%g, %g)", p.Name, k, p.X[k], p.Y[k], back[i].X[k], back[i].Y[k])
			}
		}
	}
}

func TestReadColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locpot_avg.dat")
	content := "# z  V\n0.0   -1.5\n\n1.0\t2.25   extra\n2.0 3e-1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	z, v, err := ReadColumns(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(z) != 3 || z[2] != 2.0 {
		t.Errorf("unexpected z %v", z)
	}
	if v[0] != -1.5 || v[1] != 2.25 || v[2] != 0.3 {
		t.Errorf("unexpected values %v", v)
	}

	bad := filepath.Join(t.TempDir(), "bad.dat")
	if err := os.WriteFile(bad, []byte("1.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadColumns(bad); err == nil {
		t.Error("expected error for a single column")
	}
}
