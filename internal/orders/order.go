package orders

import (
	"math"

	"github.com/angelmondragon/stallpos/internal/catalog"
	"github.com/angelmondragon/stallpos/pkg/enums"
)

// StatusEntry records when an order entered a status.
type StatusEntry struct {
	Status enums.OrderStatus `json:"status"`
	At     int64             `json:"at"`
}

// Item is one order line. UnitPrice is captured at order time and never
// follows later catalog edits.
type Item struct {
	ProductID     string                `json:"productId"`
	Name          string                `json:"name"`
	UnitPrice     int64                 `json:"unitPrice"`
	Quantity      int64                 `json:"quantity"`
	Category      enums.ProductCategory `json:"category"`
	Options       catalog.Selections    `json:"options"`
	OptionSummary []string              `json:"optionSummary"`
	Note          string                `json:"note"`
}

// Subtotal is UnitPrice times Quantity.
func (i Item) Subtotal() int64 {
	return i.UnitPrice * i.Quantity
}

// Order is a customer order. Status always equals the status of the last
// StatusHistory entry.
type Order struct {
	ID                string                `json:"id"`
	Number            string                `json:"number"`
	Status            enums.OrderStatus     `json:"status"`
	CreatedAt         int64                 `json:"createdAt"`
	UpdatedAt         int64                 `json:"updatedAt"`
	CustomerName      string                `json:"customerName"`
	Items             []Item                `json:"items"`
	Total             int64                 `json:"total"`
	PrimaryCategory   enums.ProductCategory `json:"primaryCategory"`
	StatusHistory     []StatusEntry         `json:"statusHistory"`
	ReadyAcknowledged bool                  `json:"readyAcknowledged"`
	PickedUpAt        *int64                `json:"pickedUpAt"`
}

// ItemsTotal sums every line's subtotal, saturating at math.MaxInt64.
func ItemsTotal(items []Item) int64 {
	var total int64
	for _, item := range items {
		sub := item.Subtotal()
		if sub > 0 && total > math.MaxInt64-sub {
			return math.MaxInt64
		}
		total += sub
	}
	return total
}

// Clone deep-copies the order so callers cannot mutate shared state.
func (o Order) Clone() Order {
	out := o
	if o.Items != nil {
		out.Items = make([]Item, len(o.Items))
		for i, item := range o.Items {
			item.Options = item.Options.Clone()
			item.OptionSummary = append([]string{}, item.OptionSummary...)
			out.Items[i] = item
		}
	}
	if o.StatusHistory != nil {
		out.StatusHistory = append([]StatusEntry{}, o.StatusHistory...)
	}
	if o.PickedUpAt != nil {
		at := *o.PickedUpAt
		out.PickedUpAt = &at
	}
	return out
}

// CloneAll deep-copies a slice of orders.
func CloneAll(list []Order) []Order {
	out := make([]Order, len(list))
	for i, o := range list {
		out[i] = o.Clone()
	}
	return out
}

// Terminal reports whether the order has reached the last status of flow.
func (o Order) Terminal(flow Flow) bool {
	return o.Status == flow.Terminal()
}

// Input converts the order back into its lenient input form.
func (o Order) Input() OrderInput {
	items := make([]ItemInput, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, item.Input())
	}
	history := make([]HistoryInput, 0, len(o.StatusHistory))
	for _, entry := range o.StatusHistory {
		history = append(history, HistoryInput{Status: string(entry.Status), At: entry.At})
	}
	in := OrderInput{
		ID:                o.ID,
		Number:            o.Number,
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		CustomerName:      o.CustomerName,
		Items:             mustList(items),
		Total:             o.Total,
		PrimaryCategory:   string(o.PrimaryCategory),
		StatusHistory:     mustList(history),
		ReadyAcknowledged: o.ReadyAcknowledged,
	}
	if o.PickedUpAt != nil {
		in.PickedUpAt = *o.PickedUpAt
	}
	return in
}

// Input converts the item back into its lenient input form.
func (i Item) Input() ItemInput {
	options := map[string]any(i.Options.Clone())
	summary := make([]any, 0, len(i.OptionSummary))
	for _, s := range i.OptionSummary {
		summary = append(summary, s)
	}
	return ItemInput{
		ProductID:     i.ProductID,
		Name:          i.Name,
		UnitPrice:     i.UnitPrice,
		Quantity:      i.Quantity,
		Category:      string(i.Category),
		Options:       options,
		OptionSummary: summary,
		Note:          i.Note,
	}
}
