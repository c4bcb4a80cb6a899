package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ItemName is a value object representing a valid item name.
// A name must contain at least one non-whitespace character and be at most
// 255 characters long.
type ItemName string

const maxItemNameLength = 255

// NewItemName constructs a valid ItemName or returns an error if constraints are violated.
func NewItemName(s string) (ItemName, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("item name is required")
	}
	if utf8.RuneCountInString(s) > maxItemNameLength {
		return "", fmt.Errorf("item name must not exceed %d characters", maxItemNameLength)
	}
	return ItemName(s), nil
}

// String returns the underlying string value.
func (n ItemName) String() string {
	return string(n)
}

// Contains reports whether substr occurs in the name, ignoring case.
func (n ItemName) Contains(substr string) bool {
	return strings.Contains(strings.ToLower(string(n)), strings.ToLower(substr))
}
