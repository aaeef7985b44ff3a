package orders

import (
	"fmt"

	"github.com/angelmondragon/stallpos/pkg/enums"
)

// Flow is the ordered status sequence a deployment runs orders through.
type Flow struct {
	statuses []enums.OrderStatus
}

// FullFlow runs queued -> in_progress -> ready -> picked_up.
func FullFlow() Flow {
	return Flow{statuses: []enums.OrderStatus{
		enums.OrderStatusQueued,
		enums.OrderStatusInProgress,
		enums.OrderStatusReady,
		enums.OrderStatusPickedUp,
	}}
}

// CompactFlow runs queued -> ready -> picked_up.
func CompactFlow() Flow {
	return Flow{statuses: []enums.OrderStatus{
		enums.OrderStatusQueued,
		enums.OrderStatusReady,
		enums.OrderStatusPickedUp,
	}}
}

// FlowFor maps a configured flow name to its sequence. Unknown names get the
// full flow.
func FlowFor(name enums.OrderFlow) Flow {
	if name == enums.OrderFlowCompact {
		return CompactFlow()
	}
	return FullFlow()
}

// NewFlow validates a custom sequence. It must start at queued, end at
// picked_up and list each status at most once.
func NewFlow(statuses ...enums.OrderStatus) (Flow, error) {
	if len(statuses) < 2 {
		return Flow{}, fmt.Errorf("order flow needs at least two statuses")
	}
	seen := make(map[enums.OrderStatus]struct{}, len(statuses))
	for _, s := range statuses {
		if !s.IsValid() {
			return Flow{}, fmt.Errorf("order flow: unknown status %q", s)
		}
		if _, dup := seen[s]; dup {
			return Flow{}, fmt.Errorf("order flow: duplicate status %q", s)
		}
		seen[s] = struct{}{}
	}
	if statuses[0] != enums.OrderStatusQueued {
		return Flow{}, fmt.Errorf("order flow must start at %s", enums.OrderStatusQueued)
	}
	if statuses[len(statuses)-1] != enums.OrderStatusPickedUp {
		return Flow{}, fmt.Errorf("order flow must end at %s", enums.OrderStatusPickedUp)
	}
	return Flow{statuses: append([]enums.OrderStatus{}, statuses...)}, nil
}

// Statuses returns a copy of the sequence.
func (f Flow) Statuses() []enums.OrderStatus {
	return append([]enums.OrderStatus{}, f.statuses...)
}

// Initial is the status new orders start in.
func (f Flow) Initial() enums.OrderStatus {
	if len(f.statuses) == 0 {
		return enums.OrderStatusQueued
	}
	return f.statuses[0]
}

// Terminal is the last status of the flow.
func (f Flow) Terminal() enums.OrderStatus {
	if len(f.statuses) == 0 {
		return enums.OrderStatusPickedUp
	}
	return f.statuses[len(f.statuses)-1]
}

// Index returns the position of s, or -1.
func (f Flow) Index(s enums.OrderStatus) int {
	for i, candidate := range f.statuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Contains reports whether s is part of the flow.
func (f Flow) Contains(s enums.OrderStatus) bool {
	return f.Index(s) >= 0
}

// Next returns the status after s. It reports false for the terminal status
// and for statuses outside the flow.
func (f Flow) Next(s enums.OrderStatus) (enums.OrderStatus, bool) {
	idx := f.Index(s)
	if idx < 0 || idx == len(f.statuses)-1 {
		return "", false
	}
	return f.statuses[idx+1], true
}

// Parse resolves a raw string to a status of this flow.
func (f Flow) Parse(raw string) (enums.OrderStatus, bool) {
	status, err := enums.ParseOrderStatus(raw)
	if err != nil || !f.Contains(status) {
		return "", false
	}
	return status, true
}

// Board lists the non-terminal statuses, in order.
func (f Flow) Board() []enums.OrderStatus {
	if len(f.statuses) == 0 {
		return nil
	}
	return append([]enums.OrderStatus{}, f.statuses[:len(f.statuses)-1]...)
}
