package grammar

import (
	"fmt"
	"strings"
)

// Category classifies operation kinds for discovery. It is never used for dispatch.
type Category int

const (
	CategoryArithmetic Category = iota + 1
	CategoryAssignment
	CategoryLogical
	CategoryString
)

var categoryNames = map[Category]string{
	CategoryArithmetic: "ARITHMETIC",
	CategoryAssignment: "ASSIGNMENT",
	CategoryLogical:    "LOGICAL",
	CategoryString:     "STRING",
}

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{CategoryArithmetic, CategoryAssignment, CategoryLogical, CategoryString}
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ParseCategory converts a category name (case-insensitive).
func ParseCategory(s string) (Category, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for c, name := range categoryNames {
		if name == want {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
