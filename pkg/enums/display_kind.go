package enums

import "fmt"

// DisplayKind identifies which screen a poller feeds.
type DisplayKind string

const (
	DisplayKindPOS  DisplayKind = "pos"
	DisplayKindKDS  DisplayKind = "kds"
	DisplayKindCall DisplayKind = "call"
)

var validDisplayKinds = []DisplayKind{
	DisplayKindPOS,
	DisplayKindKDS,
	DisplayKindCall,
}

// String implements fmt.Stringer.
func (k DisplayKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known DisplayKind.
func (k DisplayKind) IsValid() bool {
	for _, candidate := range validDisplayKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseDisplayKind converts raw input into a DisplayKind.
func ParseDisplayKind(value string) (DisplayKind, error) {
	for _, candidate := range validDisplayKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid display kind %q", value)
}
