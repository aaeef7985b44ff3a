package orders

import (
	"github.com/angelmondragon/stallpos/pkg/coerce"
	"github.com/angelmondragon/stallpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/stallpos/pkg/errors"
)

// Engine applies status transitions and their side effects. It mutates the
// order it is given; callers clone shared state first.
type Engine struct {
	flow  Flow
	clock Clock
}

// NewEngine builds an engine for flow. A nil clock uses SystemClock.
func NewEngine(flow Flow, clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock
	}
	if len(flow.statuses) == 0 {
		flow = FullFlow()
	}
	return &Engine{flow: flow, clock: clock}
}

// Flow returns the active status sequence.
func (e *Engine) Flow() Flow {
	return e.flow
}

// Now is the engine clock in Unix milliseconds.
func (e *Engine) Now() int64 {
	return e.clock.Now().UnixMilli()
}

// Advance moves the order to the next status of the flow.
func (e *Engine) Advance(o *Order) error {
	if !e.flow.Contains(o.Status) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order status is not part of the active flow").
			WithDetails(map[string]any{"status": o.Status})
	}
	next, ok := e.flow.Next(o.Status)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already picked up").
			WithDetails(map[string]any{"status": o.Status})
	}
	now := e.Now()
	e.enter(o, next, e.appendAt(o, now))
	o.UpdatedAt = now
	return nil
}

// Revert drops the latest history entry and restores the previous status.
// readyAcknowledged and pickedUpAt are left as they are.
func (e *Engine) Revert(o *Order) error {
	if len(o.StatusHistory) < 2 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order has no earlier status to revert to").
			WithDetails(map[string]any{"status": o.Status})
	}
	o.StatusHistory = append([]StatusEntry{}, o.StatusHistory[:len(o.StatusHistory)-1]...)
	o.Status = o.StatusHistory[len(o.StatusHistory)-1].Status
	o.UpdatedAt = e.Now()
	return nil
}

// SetStatus moves the order to status directly. When history is non-empty it
// replaces the stored history after sanitization and the status becomes its
// last entry; side effects then run only if the status changed. Without a
// history a new entry is appended and side effects always run.
func (e *Engine) SetStatus(o *Order, status enums.OrderStatus, history []StatusEntry) error {
	if !e.flow.Contains(status) {
		return invalidStatus(status)
	}
	now := e.Now()
	if len(history) > 0 {
		cleaned := e.cleanHistory(history)
		if len(cleaned) > 0 {
			previous := o.Status
			o.StatusHistory = cleaned
			last := cleaned[len(cleaned)-1]
			o.Status = last.Status
			if last.Status != previous {
				e.sideEffects(o, last.Status, last.At)
			}
			o.UpdatedAt = now
			return nil
		}
	}
	e.enter(o, status, e.appendAt(o, now))
	o.UpdatedAt = now
	return nil
}

// Transition is the dedicated status endpoint: append an entry for status and
// apply its side effects.
func (e *Engine) Transition(o *Order, status enums.OrderStatus) error {
	return e.SetStatus(o, status, nil)
}

// Acknowledge marks a ready order as announced. Repeating it is a no-op apart
// from updatedAt.
func (e *Engine) Acknowledge(o *Order) {
	o.ReadyAcknowledged = true
	o.UpdatedAt = e.Now()
}

// NewOrder builds a queued order from a creation payload.
func (e *Engine) NewOrder(in CreateInput, id, number string) Order {
	now := e.Now()
	items := SanitizeItems(in.Items)
	initial := e.flow.Initial()
	return Order{
		ID:              id,
		Number:          number,
		Status:          initial,
		CreatedAt:       now,
		UpdatedAt:       now,
		CustomerName:    coerce.String(in.CustomerName),
		Items:           items,
		Total:           ItemsTotal(items),
		PrimaryCategory: primaryCategory(in.PrimaryCategory, items),
		StatusHistory:   []StatusEntry{{Status: initial, At: now}},
	}
}

// Sanitize coerces a stored order against the active flow.
func (e *Engine) Sanitize(in OrderInput) Order {
	return SanitizeOrder(in, e.flow, e.Now())
}

// SanitizeAll coerces a stored order list against the active flow.
func (e *Engine) SanitizeAll(list coerce.List) []Order {
	return SanitizeOrders(list, e.flow, e.Now())
}

// CreateInput is the payload accepted when a new order is placed. Any status
// or history fields sent by the client are ignored.
type CreateInput struct {
	CustomerName    any         `json:"customerName"`
	PrimaryCategory any         `json:"primaryCategory"`
	Items           coerce.List `json:"items"`
}

func (e *Engine) enter(o *Order, status enums.OrderStatus, at int64) {
	o.StatusHistory = append(append([]StatusEntry{}, o.StatusHistory...), StatusEntry{Status: status, At: at})
	o.Status = status
	e.sideEffects(o, status, at)
}

func (e *Engine) sideEffects(o *Order, status enums.OrderStatus, at int64) {
	switch status {
	case enums.OrderStatusReady:
		o.ReadyAcknowledged = false
	case enums.OrderStatusPickedUp:
		o.ReadyAcknowledged = true
		if o.PickedUpAt == nil {
			pickedUp := at
			o.PickedUpAt = &pickedUp
		}
	}
}

// appendAt keeps history chronological when the clock reads behind the last
// recorded entry.
func (e *Engine) appendAt(o *Order, now int64) int64 {
	if n := len(o.StatusHistory); n > 0 && o.StatusHistory[n-1].At > now {
		return o.StatusHistory[n-1].At
	}
	return now
}

func (e *Engine) cleanHistory(history []StatusEntry) []StatusEntry {
	inputs := make([]HistoryInput, 0, len(history))
	for _, entry := range history {
		inputs = append(inputs, HistoryInput{Status: string(entry.Status), At: entry.At})
	}
	return SanitizeHistory(mustList(inputs), e.flow)
}

func invalidStatus(status enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
		WithDetails(map[string]any{"status": status})
}
