package enums

import "fmt"

// OrderFlow names a deployable status sequence.
type OrderFlow string

const (
	// OrderFlowFull runs queued -> in_progress -> ready -> picked_up.
	OrderFlowFull OrderFlow = "full"
	// OrderFlowCompact skips in_progress.
	OrderFlowCompact OrderFlow = "compact"
)

var validOrderFlows = []OrderFlow{
	OrderFlowFull,
	OrderFlowCompact,
}

// String implements fmt.Stringer.
func (f OrderFlow) String() string {
	return string(f)
}

// IsValid reports whether the value is a known OrderFlow.
func (f OrderFlow) IsValid() bool {
	for _, candidate := range validOrderFlows {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseOrderFlow converts raw input into an OrderFlow.
func ParseOrderFlow(value string) (OrderFlow, error) {
	for _, candidate := range validOrderFlows {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order flow %q", value)
}
