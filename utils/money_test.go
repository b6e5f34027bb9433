package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"whole number", 22.0, 22.0},
		{"two decimals unchanged", 22.5, 22.5},
		{"rounds up", 22.506, 22.51},
		{"rounds down", 22.504, 22.5},
		{"exact half rounds away from zero", 0.125, 0.13},
		{"repeating fraction", 1.0 / 3.0, 0.33},
		{"sub-cent value", 0.0001, 0.0},
		{"negative", -1.337, -1.34},
		{"zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Round2(tt.in), 1e-9)
		})
	}
}
