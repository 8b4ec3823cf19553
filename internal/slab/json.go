package slab

import (
	"encoding/json"
	"fmt"

	"github.com/san-kum/slabpot/internal/charge"
	"github.com/san-kum/slabpot/internal/epsilon"
	"github.com/san-kum/slabpot/internal/potential"
)

const Kind = "slab_model"

type modelDoc struct {
	Kind        string                   `json:"kind"`
	Charge      float64                  `json:"charge"`
	Epsilon     *epsilon.Distribution    `json:"epsilon"`
	ChargeModel *charge.Model            `json:"charge_model"`
	Potential   *potential.Potential     `json:"potential"`
	FP          *potential.FP1dPotential `json:"fp_potential"`
	Window      float64                  `json:"window,omitempty"`
}

func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(modelDoc{
		Kind:        Kind,
		Charge:      m.Charge,
		Epsilon:     m.Epsilon,
		ChargeModel: m.ChargeModel,
		Potential:   m.Potential,
		FP:          m.FP,
		Window:      m.Window,
	})
}

func (m *Model) UnmarshalJSON(data []byte) error {
	var doc modelDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind != "" && doc.Kind != Kind {
		return fmt.Errorf("slab: unknown kind %q", doc.Kind)
	}
	parsed := &Model{
		Charge:      doc.Charge,
		Epsilon:     doc.Epsilon,
		ChargeModel: doc.ChargeModel,
		Potential:   doc.Potential,
		FP:          doc.FP,
		Window:      doc.Window,
	}
	if err := parsed.Validate(); err != nil {
		return err
	}
	*m = *parsed
	return nil
}
