package maintenance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestGetEstimatedCost(t *testing.T) {
	tests := []struct {
		name                     string
		override, program, alert *float64
		expected                 float64
	}{
		{"override wins", f(300), f(200), f(100), 300},
		{"zero override falls through", f(0), f(200), f(100), 200},
		{"nil override falls through", nil, f(200), f(100), 200},
		{"program zero falls to alert", f(0), f(0), f(100), 100},
		{"only alert", nil, nil, f(100), 100},
		{"negative is not usable", f(-50), nil, f(100), 100},
		{"all zero", f(0), f(0), f(0), 0},
		{"all nil", nil, nil, nil, 0},
		{"nothing usable", f(-1), f(0), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetEstimatedCost(tt.override, tt.program, tt.alert))
		})
	}
}
