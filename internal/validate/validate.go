// Package validate holds the field format checks shared by the catalog and
// member stores: ISBN checksums, shelf label format, and contact numbers.
package validate

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidISBN      = errors.New("isbn failed checksum validation")
	ErrInvalidShelfName = errors.New("shelf name must be one uppercase letter followed by 1-5 digits")
	ErrInvalidContact   = errors.New("contact number must start with 09 and be exactly 11 digits")
)

var (
	shelfNamePattern = regexp.MustCompile(`^[A-Z][0-9]{1,5}$`)
	contactPattern   = regexp.MustCompile(`^09[0-9]{9}$`)
)

// ISBN validates an ISBN-10 or ISBN-13 checksum. Hyphens and spaces are
// ignored. An empty string is accepted: ISBN is an optional field.
func ISBN(isbn string) error {
	cleaned := strings.NewReplacer("-", "", " ", "").Replace(isbn)
	if cleaned == "" {
		return nil
	}
	switch len(cleaned) {
	case 10:
		if isbn10Valid(cleaned) {
			return nil
		}
	case 13:
		if isbn13Valid(cleaned) {
			return nil
		}
	}
	return ErrInvalidISBN
}

// isbn10Valid checks the weighted-sum-mod-11 checksum. 'X' in the final
// position stands for the value 10.
func isbn10Valid(s string) bool {
	sum := 0
	for i, c := range s {
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case (c == 'X' || c == 'x') && i == 9:
			v = 10
		default:
			return false
		}
		sum += (10 - i) * v
	}
	return sum%11 == 0
}

// isbn13Valid checks the alternating 1/3 weighted-sum-mod-10 checksum.
func isbn13Valid(s string) bool {
	sum := 0
	for i, c := range s {
		if c < '0' || c > '9' {
			return false
		}
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		sum += weight * int(c-'0')
	}
	return sum%10 == 0
}

// ShelfName validates the shelf label format: one uppercase letter followed
// by one to five digits, e.g. "A1" or "C20514".
func ShelfName(name string) error {
	if !shelfNamePattern.MatchString(name) {
		return ErrInvalidShelfName
	}
	return nil
}

// ContactNumber validates the local mobile format: leading "09", exactly
// eleven digits.
func ContactNumber(contact string) error {
	if !contactPattern.MatchString(contact) {
		return ErrInvalidContact
	}
	return nil
}
