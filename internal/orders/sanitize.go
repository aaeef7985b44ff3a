package orders

import (
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/stallpos/internal/catalog"
	"github.com/angelmondragon/stallpos/pkg/coerce"
	"github.com/angelmondragon/stallpos/pkg/enums"
)

const (
	numberWidth = 4
	blankNumber = "0000"

	// MaxUnitPrice and MaxQuantity bound a line so totals stay far inside
	// int64 however many lines an order has.
	MaxUnitPrice int64 = 100_000_000
	MaxQuantity  int64 = 9_999
)

// HistoryInput is a status history entry as received over the wire or read
// back from storage.
type HistoryInput struct {
	Status any `json:"status"`
	At     any `json:"at"`
}

// ItemInput is an order line before sanitization.
type ItemInput struct {
	ProductID     any `json:"productId"`
	Name          any `json:"name"`
	UnitPrice     any `json:"unitPrice"`
	Quantity      any `json:"quantity"`
	Category      any `json:"category"`
	Options       any `json:"options"`
	OptionSummary any `json:"optionSummary"`
	Note          any `json:"note"`
}

// OrderInput is a persisted or submitted order before sanitization.
type OrderInput struct {
	ID                any         `json:"id"`
	Number            any         `json:"number"`
	Status            any         `json:"status"`
	CreatedAt         any         `json:"createdAt"`
	UpdatedAt         any         `json:"updatedAt"`
	CustomerName      any         `json:"customerName"`
	Items             coerce.List `json:"items"`
	Total             any         `json:"total"`
	PrimaryCategory   any         `json:"primaryCategory"`
	StatusHistory     coerce.List `json:"statusHistory"`
	ReadyAcknowledged any         `json:"readyAcknowledged"`
	PickedUpAt        any         `json:"pickedUpAt"`
}

// SanitizeItem coerces a line into shape. Quantity is clamped to
// [1, MaxQuantity] and UnitPrice to [0, MaxUnitPrice].
func SanitizeItem(in ItemInput) Item {
	options := catalog.Selections{}
	for k, v := range coerce.Object(in.Options) {
		options[k] = v
	}
	return Item{
		ProductID:     coerce.String(in.ProductID),
		Name:          coerce.String(in.Name),
		UnitPrice:     coerce.Between(in.UnitPrice, 0, MaxUnitPrice),
		Quantity:      coerce.Between(in.Quantity, 1, MaxQuantity),
		Category:      catalog.SanitizeCategory(in.Category),
		Options:       options,
		OptionSummary: coerce.Strings(in.OptionSummary),
		Note:          coerce.String(in.Note),
	}
}

// SanitizeItems drops entries that are not objects.
func SanitizeItems(list coerce.List) []Item {
	items := []Item{}
	coerce.Each(list, func(in *ItemInput) {
		if in == nil {
			return
		}
		items = append(items, SanitizeItem(*in))
	})
	return items
}

// SanitizeHistory keeps entries whose status belongs to flow and whose
// timestamp is positive, ordered by timestamp.
func SanitizeHistory(list coerce.List, flow Flow) []StatusEntry {
	history := []StatusEntry{}
	coerce.Each(list, func(in *HistoryInput) {
		if in == nil {
			return
		}
		status, ok := flow.Parse(coerce.String(in.Status))
		if !ok {
			return
		}
		at, ok := coerce.Int(in.At)
		if !ok || at <= 0 {
			return
		}
		history = append(history, StatusEntry{Status: status, At: at})
	})
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].At < history[j].At
	})
	return history
}

// SanitizeOrder coerces a stored order into shape. Statuses outside flow fall
// back to its initial status, and the status is always re-derived from the
// surviving history.
func SanitizeOrder(in OrderInput, flow Flow, now int64) Order {
	id := firstNonEmpty(coerce.String(in.ID), coerce.String(in.Number), fmt.Sprint(now))
	number := padNumber(firstNonEmpty(coerce.String(in.Number), coerce.String(in.ID), blankNumber))

	createdAt, ok := coerce.Int(in.CreatedAt)
	if !ok || createdAt <= 0 {
		createdAt = now
	}
	updatedAt, ok := coerce.Int(in.UpdatedAt)
	if !ok || updatedAt <= 0 {
		updatedAt = createdAt
	}

	items := SanitizeItems(in.Items)
	total, ok := coerce.Int(in.Total)
	switch {
	case !ok:
		total = ItemsTotal(items)
	case total < 0:
		total = 0
	}

	history := SanitizeHistory(in.StatusHistory, flow)
	var status enums.OrderStatus
	if len(history) > 0 {
		status = history[len(history)-1].Status
	} else {
		parsed, ok := flow.Parse(coerce.String(in.Status))
		if !ok {
			parsed = flow.Initial()
		}
		status = parsed
		history = []StatusEntry{{Status: status, At: createdAt}}
	}

	var pickedUpAt *int64
	if coerce.Truthy(in.PickedUpAt) {
		if at, ok := coerce.Int(in.PickedUpAt); ok && at > 0 {
			pickedUpAt = &at
		}
	}

	return Order{
		ID:                id,
		Number:            number,
		Status:            status,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
		CustomerName:      coerce.String(in.CustomerName),
		Items:             items,
		Total:             total,
		PrimaryCategory:   primaryCategory(in.PrimaryCategory, items),
		StatusHistory:     history,
		ReadyAcknowledged: coerce.Truthy(in.ReadyAcknowledged),
		PickedUpAt:        pickedUpAt,
	}
}

// SanitizeOrders drops null and non-object entries. A missing or non-array
// list yields an empty slice.
func SanitizeOrders(list coerce.List, flow Flow, now int64) []Order {
	out := []Order{}
	coerce.Each(list, func(in *OrderInput) {
		if in == nil {
			return
		}
		out = append(out, SanitizeOrder(*in, flow, now))
	})
	return out
}

// FormatNumber renders a counter value as a zero-padded order number.
func FormatNumber(n int64) string {
	return padNumber(fmt.Sprint(n))
}

func padNumber(s string) string {
	if len(s) >= numberWidth {
		return s
	}
	return strings.Repeat("0", numberWidth-len(s)) + s
}

func primaryCategory(raw any, items []Item) enums.ProductCategory {
	if category, err := enums.ParseProductCategory(coerce.String(raw)); err == nil {
		return category
	}
	if len(items) > 0 {
		return items[0].Category
	}
	return enums.DefaultProductCategory
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func mustList[T any](values []T) coerce.List {
	list, err := coerce.NewList(values)
	if err != nil {
		return coerce.List{Items: nil, Valid: true}
	}
	return list
}
