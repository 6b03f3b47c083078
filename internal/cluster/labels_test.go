package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name                      string
		complexity, maturity, loc float64
		want                      string
	}{
		{"simple and mature", 3, 80, 50, LabelHighQuality},
		{"large and complex", 12, 40, 900, LabelOverEngineered},
		{"complex but small", 12, 65, 100, LabelMature},
		{"simple but low maturity", 3, 50, 50, LabelNeedsWork},
		{"maturity boundary is exclusive", 3, 70, 50, LabelMature},
		{"everything at boundaries", 5, 60, 500, LabelNeedsWork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.complexity, tt.maturity, tt.loc))
		})
	}
}
