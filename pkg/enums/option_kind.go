package enums

import "fmt"

// OptionKind identifies how a product option is selected.
type OptionKind string

const (
	OptionKindToggle OptionKind = "toggle"
	OptionKindLevel  OptionKind = "level"
	OptionKindChoice OptionKind = "choice"
)

var validOptionKinds = []OptionKind{
	OptionKindToggle,
	OptionKindLevel,
	OptionKindChoice,
}

// String implements fmt.Stringer.
func (k OptionKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known OptionKind.
func (k OptionKind) IsValid() bool {
	for _, candidate := range validOptionKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseOptionKind converts raw input into an OptionKind.
func ParseOptionKind(value string) (OptionKind, error) {
	for _, candidate := range validOptionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid option kind %q", value)
}
