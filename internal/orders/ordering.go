package orders

import (
	"sort"
	"strings"

	"github.com/angelmondragon/stallpos/pkg/enums"
)

const (
	DefaultReadyLimit  = 9
	DefaultPickupLimit = 10
)

// EnteredAt returns when the order last entered status, falling back to its
// creation time.
func EnteredAt(o Order, status enums.OrderStatus) int64 {
	for i := len(o.StatusHistory) - 1; i >= 0; i-- {
		if o.StatusHistory[i].Status == status {
			return o.StatusHistory[i].At
		}
	}
	return o.CreatedAt
}

// SortByStatusEntry orders by the time each order entered its current status,
// oldest first.
func SortByStatusEntry(list []Order) {
	sort.SliceStable(list, func(i, j int) bool {
		return EnteredAt(list[i], list[i].Status) < EnteredAt(list[j], list[j].Status)
	})
}

// SortByCreated orders by creation time, oldest first.
func SortByCreated(list []Order) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt < list[j].CreatedAt
	})
}

// WithStatus returns clones of the orders in status, sorted by status entry.
func WithStatus(list []Order, status enums.OrderStatus) []Order {
	out := []Order{}
	for _, o := range list {
		if o.Status == status {
			out = append(out, o.Clone())
		}
	}
	SortByStatusEntry(out)
	return out
}

// ReadyQueue lists ready orders, earliest to become ready first, capped at
// limit. A non-positive limit uses DefaultReadyLimit.
func ReadyQueue(list []Order, limit int) []Order {
	if limit <= 0 {
		limit = DefaultReadyLimit
	}
	out := WithStatus(list, enums.OrderStatusReady)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RecentPickups lists picked up orders, most recent first, capped at limit.
// A non-positive limit uses DefaultPickupLimit.
func RecentPickups(list []Order, limit int) []Order {
	if limit <= 0 {
		limit = DefaultPickupLimit
	}
	out := []Order{}
	for _, o := range list {
		if o.Status == enums.OrderStatusPickedUp {
			out = append(out, o.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return pickedUpAt(out[i]) > pickedUpAt(out[j])
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Filter narrows orders by status, category and a free-text query matched
// against number, customer name and item names. Empty criteria match all.
type Filter struct {
	Status   enums.OrderStatus
	Category enums.ProductCategory
	Query    string
}

// Match reports whether o satisfies every criterion.
func (f Filter) Match(o Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.Category != "" && !hasCategory(o, f.Category) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(o.Number), q) || strings.Contains(strings.ToLower(o.CustomerName), q) {
		return true
	}
	for _, item := range o.Items {
		if strings.Contains(strings.ToLower(item.Name), q) {
			return true
		}
	}
	return false
}

// Apply returns clones of the matching orders in their original order.
func (f Filter) Apply(list []Order) []Order {
	out := []Order{}
	for _, o := range list {
		if f.Match(o) {
			out = append(out, o.Clone())
		}
	}
	return out
}

func hasCategory(o Order, category enums.ProductCategory) bool {
	if o.PrimaryCategory == category {
		return true
	}
	for _, item := range o.Items {
		if item.Category == category {
			return true
		}
	}
	return false
}

func pickedUpAt(o Order) int64 {
	if o.PickedUpAt != nil {
		return *o.PickedUpAt
	}
	return EnteredAt(o, enums.OrderStatusPickedUp)
}
