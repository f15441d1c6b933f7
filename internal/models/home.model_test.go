package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddress_Merge(t *testing.T) {
	base := Address{
		Street:  "12 Beacon St",
		City:    "Boston",
		State:   "MA",
		Zipcode: "02108",
	}

	t.Run("nil corrections return the original", func(t *testing.T) {
		assert.Equal(t, base, base.Merge(nil))
	})

	t.Run("non-empty fields win", func(t *testing.T) {
		merged := base.Merge(&Address{Street: "45 Milk St", Unit: "2B"})
		assert.Equal(t, "45 Milk St", merged.Street)
		assert.Equal(t, "2B", merged.Unit)
		assert.Equal(t, "Boston", merged.City)
		assert.Equal(t, "02108", merged.Zipcode)
	})

	t.Run("empty correction fields keep the snapshot", func(t *testing.T) {
		merged := base.Merge(&Address{})
		assert.Equal(t, base, merged)
	})
}

func TestAddress_Usable(t *testing.T) {
	testCases := []struct {
		name    string
		address Address
		usable  bool
	}{
		{"street and city", Address{Street: "12 Beacon St", City: "Boston"}, true},
		{"street and zip", Address{Street: "12 Beacon St", Zipcode: "02108"}, true},
		{"street only", Address{Street: "12 Beacon St"}, false},
		{"city only", Address{City: "Boston"}, false},
		{"empty", Address{}, false},
		{"whitespace street", Address{Street: "   ", City: "Boston"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.usable, tc.address.Usable())
		})
	}
}
