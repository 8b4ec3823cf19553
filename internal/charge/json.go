package charge

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/san-kum/slabpot/internal/grid"
)

type modelDoc struct {
	Kind       Kind          `json:"kind"`
	Grids      grid.Grids    `json:"grids"`
	Sigma      float64       `json:"sigma"`
	DefectZPos float64       `json:"defect_z_pos"`
	Center     *[2]float64   `json:"center,omitempty"`
	EpsilonX   []float64     `json:"epsilon_x"`
	EpsilonY   []float64     `json:"epsilon_y"`
	Charges    *grid.Field3D `json:"charges"`
}

func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(modelDoc{
		Kind:       m.kind,
		Grids:      m.grids,
		Sigma:      m.sigma,
		DefectZPos: m.defectZPos,
		Center:     &m.center,
		EpsilonX:   m.epsilonX,
		EpsilonY:   m.epsilonY,
		Charges:    m.charges,
	})
}

func (m *Model) UnmarshalJSON(data []byte) error {
	var doc modelDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	parsed := &Model{
		grids:      doc.Grids,
		sigma:      doc.Sigma,
		defectZPos: doc.DefectZPos,
		center:     defaultCenter(doc.Grids),
		epsilonX:   doc.EpsilonX,
		epsilonY:   doc.EpsilonY,
		charges:    doc.Charges,
	}
	if doc.Center != nil {
		parsed.center = *doc.Center
	}

	switch doc.Kind {
	case KindGauss, "":
		parsed.kind = KindGauss
	case KindSingleGauss:
		parsed.kind = KindSingleGauss
		if err := parsed.grids.Validate("charge.Model"); err != nil {
			return err
		}
		if parsed.charges == nil {
			c, err := gaussDensity(parsed.grids, parsed.sigma, [3]float64{parsed.center[0], parsed.center[1], parsed.defectZPos})
			if err != nil {
				return err
			}
			parsed.charges = c
		}
	default:
		return fmt.Errorf("charge: unknown kind %q", doc.Kind)
	}
	if err := parsed.validate(); err != nil {
		return err
	}

	m.kind, m.grids, m.sigma, m.defectZPos, m.center = parsed.kind, parsed.grids, parsed.sigma, parsed.defectZPos, parsed.center
	m.epsilonX, m.epsilonY, m.charges = parsed.epsilonX, parsed.epsilonY, parsed.charges
	m.recipOnce, m.recip = sync.Once{}, nil
	return nil
}
