package errs

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := Config("grid.New", "base_length", -1.0, "must be positive")

	if !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
	var ve *ValueError
	if !errors.As(err, &ve) {
		t.Fatal("expected *ValueError")
	}
	if ve.Field != "base_length" {
		t.Errorf("expected field base_length, got %s", ve.Field)
	}
	if !strings.Contains(err.Error(), "base_length=-1") {
		t.Errorf("expected offending value in message, got %q", err.Error())
	}
}

func TestShapeAndInconsistent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"shape", Shape("charge.New", "charges %v vs grids %v", [3]int{1, 1, 2}, [3]int{1, 1, 3}), ErrShape},
		{"inconsistent", Inconsistent("fp", "defect has %d points, perfect has %d", 10, 12), ErrInconsistentData},
		{"degenerate", Degenerate("epsilon.Effective", "ionic[0][3]", 0.0, "zero ionic response"), ErrDegenerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.want)
			}
		})
	}
}
