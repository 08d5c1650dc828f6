package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestISBN10(t *testing.T) {
	tests := []struct {
		name  string
		isbn  string
		valid bool
	}{
		{"valid plain", "0306406152", true},
		{"valid with hyphens", "0-306-40615-2", true},
		{"valid with X check digit", "097522980X", true},
		{"lowercase x accepted", "097522980x", true},
		{"bad check digit", "0306406153", false},
		{"X not in last position", "09X7522980", false},
		{"non-digit garbage", "03064061ab", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ISBN(tt.isbn)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidISBN)
			}
		})
	}
}

func TestISBN13(t *testing.T) {
	tests := []struct {
		name  string
		isbn  string
		valid bool
	}{
		{"valid plain", "9780306406157", true},
		{"valid with hyphens", "978-0-306-40615-7", true},
		{"bad check digit", "9780306406158", false},
		{"letters rejected", "978030640615a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ISBN(tt.isbn)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidISBN)
			}
		})
	}
}

func TestISBN_EmptyAllowed(t *testing.T) {
	assert.NoError(t, ISBN(""))
}

func TestISBN_WrongLength(t *testing.T) {
	assert.ErrorIs(t, ISBN("12345"), ErrInvalidISBN)
	assert.ErrorIs(t, ISBN("123456789012345"), ErrInvalidISBN)
}

func TestShelfName(t *testing.T) {
	assert.NoError(t, ShelfName("A1"))
	assert.NoError(t, ShelfName("Z99999"))

	assert.ErrorIs(t, ShelfName("a1"), ErrInvalidShelfName)
	assert.ErrorIs(t, ShelfName("A"), ErrInvalidShelfName)
	assert.ErrorIs(t, ShelfName("A123456"), ErrInvalidShelfName)
	assert.ErrorIs(t, ShelfName("AB1"), ErrInvalidShelfName)
	assert.ErrorIs(t, ShelfName(""), ErrInvalidShelfName)
}

func TestContactNumber(t *testing.T) {
	assert.NoError(t, ContactNumber("09171234567"))

	assert.ErrorIs(t, ContactNumber("0917123456"), ErrInvalidContact)   // too short
	assert.ErrorIs(t, ContactNumber("091712345678"), ErrInvalidContact) // too long
	assert.ErrorIs(t, ContactNumber("08171234567"), ErrInvalidContact)  // wrong prefix
	assert.ErrorIs(t, ContactNumber("0917123456a"), ErrInvalidContact)
	assert.ErrorIs(t, ContactNumber(""), ErrInvalidContact)
}
