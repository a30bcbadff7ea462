package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/weekmarket/pkg/models"
)

func TestChecklistFieldValueNewPrice(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{"number", 12.5, 12.5, true},
		{"integer", 15, 15, true},
		{"numeric string", "12.5", 12.5, true},
		{"padded numeric string", " 12.5 ", 12.5, true},
		{"empty string clears", "", 0, false},
		{"non-numeric string clears", "soon", 0, false},
		{"nil clears", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := checklistFieldValue(models.FieldNewPrice, tt.in)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				// The accepted value is what gets stored; it must never
				// degrade to 0 for an input that parsed as numeric.
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestChecklistFieldValueCollectedQuantity(t *testing.T) {
	got, ok := checklistFieldValue(models.FieldCollectedQuantity, "4")
	require.True(t, ok)
	assert.Equal(t, 4.0, got)

	// Malformed input coerces to 0 instead of clearing anything.
	got, ok = checklistFieldValue(models.FieldCollectedQuantity, "abc")
	require.True(t, ok)
	assert.Equal(t, 0.0, got)
}
