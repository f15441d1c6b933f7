package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFullName(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		wantFirst string
		wantLast  string
	}{
		{"two names", "Harper Homeowner", "Harper", "Homeowner"},
		{"three names", "Mary Jane Watson", "Mary", "Jane Watson"},
		{"single name falls back to itself", "Cher", "Cher", "Cher"},
		{"extra whitespace", "  Ada   Lovelace  ", "Ada", "Lovelace"},
		{"empty", "", "", ""},
		{"whitespace only", "   ", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			first, last := SplitFullName(tc.input)
			assert.Equal(t, tc.wantFirst, first)
			assert.Equal(t, tc.wantLast, last)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "casey@example.com", NormalizeEmail("  Casey@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestAccountType_Valid(t *testing.T) {
	assert.True(t, AccountTypeHomeowner.Valid())
	assert.True(t, AccountTypeCleaner.Valid())
	assert.True(t, AccountTypeOwner.Valid())
	assert.False(t, AccountType("admin").Valid())
	assert.False(t, AccountType("").Valid())
}
