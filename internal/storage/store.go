package storage

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/slabpot/internal/charge"
	"github.com/san-kum/slabpot/internal/epsilon"
	"github.com/san-kum/slabpot/internal/grid"
	"github.com/san-kum/slabpot/internal/potential"
	"github.com/san-kum/slabpot/internal/slab"
)

// Default document names used by the pipeline stages.
const (
	EpsilonName     = "epsilon_distribution"
	ChargeModelName = "gauss_charge_model"
	PotentialName   = "potential"
	FPName          = "fp_potential"
	SlabModelName   = "slab_model"
	EnergyName      = "electrostatic_energy"
	ProfilesName    = "profiles"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// Path returns the file a document name maps to.
func (s *Store) Path(name string) string {
	if filepath.Ext(name) == "" {
		name += ".json"
	}
	return filepath.Join(s.baseDir, name)
}

// Entry describes one stored JSON document.
type Entry struct {
	Name    string    `json:"name"`
	Kind    string    `json:"kind"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Save writes v as indented JSON and returns the file path.
func (s *Store) Save(name string, v any) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	path := s.Path(name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("storage: encode %s: %w", name, err)
	}
	return path, nil
}

// List reports every JSON document with its kind tag. Documents without
// one are listed with an empty kind.
func (s *Store) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}

	out := make([]Entry, 0)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var head struct {
			Kind string `json:"kind"`
		}
		_ = json.Unmarshal(data, &head)

		out = append(out, Entry{
			Name:    strings.TrimSuffix(entry.Name(), ".json"),
			Kind:    head.Kind,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Load decodes the named document into v.
func (s *Store) Load(name string, v any) error {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("storage: decode %s: %w", name, err)
	}
	return nil
}

func (s *Store) LoadEpsilon(name string) (*epsilon.Distribution, error) {
	var d epsilon.Distribution
	if err := s.Load(name, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) LoadChargeModel(name string) (*charge.Model, error) {
	var m charge.Model
	if err := s.Load(name, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) LoadPotential(name string) (*potential.Potential, error) {
	var p potential.Potential
	if err := s.Load(name, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) LoadFP(name string) (*potential.FP1dPotential, error) {
	var fp potential.FP1dPotential
	if err := s.Load(name, &fp); err != nil {
		return nil, err
	}
	return &fp, nil
}

func (s *Store) LoadSlabModel(name string) (*slab.Model, error) {
	var m slab.Model
	if err := s.Load(name, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) LoadEnergy(name string) (*slab.Energy, error) {
	var e slab.Energy
	if err := s.Load(name, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// SaveProfilesCSV writes profiles in long form (profile, x, y) for
// external plotting tools.
func (s *Store) SaveProfilesCSV(name string, profiles []grid.Profile) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	path := filepath.Join(s.baseDir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"profile", "x", "y"}); err != nil {
		return "", err
	}
	for _, p := range profiles {
		for i := range p.X {
			row := []string{
				p.Name,
				strconv.FormatFloat(p.X[i], 'f', 6, 64),
				strconv.FormatFloat(p.Y[i], 'g', 10, 64),
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	return path, w.Error()
}

// LoadProfilesCSV reads a file written by SaveProfilesCSV, keeping the
// order in which profiles first appear.
func (s *Store) LoadProfilesCSV(name string) ([]grid.Profile, error) {
	f, err := os.Open(filepath.Join(s.baseDir, name+".csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	var out []grid.Profile
	index := map[string]int{}
	for i := 1; i < len(records); i++ {
		rec := records[i]
		x, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: line %d: %w", i+1, err)
		}
		y, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: line %d: %w", i+1, err)
		}
		k, ok := index[rec[0]]
		if !ok {
			k = len(out)
			index[rec[0]] = k
			out = append(out, grid.Profile{Name: rec[0]})
		}
		out[k].X = append(out[k].X, x)
		out[k].Y = append(out[k].Y, y)
	}
	return out, nil
}

// ReadColumns parses a whitespace separated two-column (z, value) text
// file. Blank lines and lines starting with # are skipped.
func ReadColumns(path string) (z, values []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("%s:%d: expected two columns, got %d", path, line, len(fields))
		}
		zv, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		z = append(z, zv)
		values = append(values, v)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return z, values, nil
}
