package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNumericValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{"float64", 12.5, 12.5, true},
		{"int32", int32(3), 3, true},
		{"int64", int64(7), 7, true},
		{"int", 2, 2, true},
		{"string is not numeric", "12.5", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NumericValue(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceNumber(t *testing.T) {
	assert.Equal(t, 12.5, CoerceNumber(12.5))
	assert.Equal(t, 12.5, CoerceNumber("12.5"))
	assert.Equal(t, 0.0, CoerceNumber("abc"))
	assert.Equal(t, 0.0, CoerceNumber(""))
	assert.Equal(t, 0.0, CoerceNumber(nil))
}

func TestLineItemDecodeCoercesMalformedNumbers(t *testing.T) {
	data, err := bson.Marshal(bson.M{
		"id":       "P1",
		"name":     "Carrots",
		"price":    "not-a-price",
		"quantity": "three",
		"supplier": "supplierX",
	})
	require.NoError(t, err)

	var item LineItem
	require.NoError(t, bson.Unmarshal(data, &item))

	assert.Equal(t, "P1", item.ID)
	assert.Equal(t, 0.0, item.Price)
	assert.Equal(t, 0, item.Quantity)
	assert.Equal(t, "supplierX", item.Supplier)
}

func TestLineItemDecodeClampsNegativeQuantity(t *testing.T) {
	data, err := bson.Marshal(bson.M{"id": "P1", "quantity": -4, "price": 2.5})
	require.NoError(t, err)

	var item LineItem
	require.NoError(t, bson.Unmarshal(data, &item))

	assert.Equal(t, 0, item.Quantity)
	assert.Equal(t, 2.5, item.Price)
}

func TestChecklistEntryDecodeOverrideSentinel(t *testing.T) {
	data, err := bson.Marshal(bson.M{
		"_id":               "abc",
		"weekCode":          "09-2025",
		"productId":         "P1",
		"collected":         true,
		"collectedQuantity": int32(4),
		"newPrice":          15.0,
	})
	require.NoError(t, err)

	var entry ChecklistEntry
	require.NoError(t, bson.Unmarshal(data, &entry))

	assert.True(t, entry.Collected)
	assert.Equal(t, 4.0, entry.CollectedQuantity)
	require.True(t, entry.HasOverride())
	assert.Equal(t, 15.0, *entry.NewPrice)
}

func TestChecklistEntryDecodeNonNumericOverrideIsAbsent(t *testing.T) {
	for _, newPrice := range []interface{}{"", "soon", nil} {
		data, err := bson.Marshal(bson.M{
			"weekCode":  "09-2025",
			"productId": "P1",
			"newPrice":  newPrice,
		})
		require.NoError(t, err)

		var entry ChecklistEntry
		require.NoError(t, bson.Unmarshal(data, &entry))
		assert.False(t, entry.HasOverride(), "newPrice=%v", newPrice)
	}
}

func TestChecklistEntryDecodeMissingOverrideIsAbsent(t *testing.T) {
	data, err := bson.Marshal(bson.M{"weekCode": "09-2025", "productId": "P1"})
	require.NoError(t, err)

	var entry ChecklistEntry
	require.NoError(t, bson.Unmarshal(data, &entry))
	assert.False(t, entry.HasOverride())
}

func TestHasOverrideOnNil(t *testing.T) {
	var entry *ChecklistEntry
	assert.False(t, entry.HasOverride())
}
