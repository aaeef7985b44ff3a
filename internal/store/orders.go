package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/stallpos/pkg/errors"
)

// Orders returns the orders matching filter, oldest first.
func (s *Store) Orders(filter orders.Filter) []orders.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := filter.Apply(s.state.Orders)
	orders.SortByCreated(out)
	return out
}

// Order returns one order by id.
func (s *Store) Order(id string) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return orders.Order{}, orderNotFound(id)
	}
	return s.state.Orders[idx].Clone(), nil
}

// CreateOrder places a new order. The id and number come from the counter;
// anything the client sent for them is ignored. Items without an option
// summary get one rendered from the current catalog.
func (s *Store) CreateOrder(ctx context.Context, in orders.CreateInput) (orders.Order, error) {
	if len(orders.SanitizeItems(in.Items)) == 0 {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.CurrentOrderNumber = nextCounter(s.state.CurrentOrderNumber)
	number := orders.FormatNumber(s.state.CurrentOrderNumber)
	id := number
	if s.indexOf(id) >= 0 {
		id = uuid.NewString()
	}

	order := s.engine.NewOrder(in, id, number)
	for i, item := range order.Items {
		if len(item.OptionSummary) > 0 {
			continue
		}
		if p, ok := s.state.Catalog.Find(item.ProductID); ok {
			order.Items[i].OptionSummary = s.registry.SummarizeSelections(p, item.Options)
		}
	}

	s.state.Orders = append(s.state.Orders, order)
	s.recorder.OrderCreated()
	return order.Clone(), s.persistLocked(ctx)
}

// PatchOrder merges a field-level update into one order.
func (s *Store) PatchOrder(ctx context.Context, id string, p orders.Patch) (orders.Order, error) {
	return s.mutateOrder(ctx, id, func(o *orders.Order) error {
		return s.engine.ApplyPatch(o, p)
	})
}

// SetOrderStatus moves an order to status and applies the lifecycle side
// effects.
func (s *Store) SetOrderStatus(ctx context.Context, id string, status enums.OrderStatus) (orders.Order, error) {
	return s.mutateOrder(ctx, id, func(o *orders.Order) error {
		return s.engine.Transition(o, status)
	})
}

// AdvanceOrder moves an order to the next status of the active flow.
func (s *Store) AdvanceOrder(ctx context.Context, id string) (orders.Order, error) {
	return s.mutateOrder(ctx, id, s.engine.Advance)
}

// RevertOrder undoes an order's most recent transition.
func (s *Store) RevertOrder(ctx context.Context, id string) (orders.Order, error) {
	return s.mutateOrder(ctx, id, s.engine.Revert)
}

// AcknowledgeOrder marks a ready order as announced.
func (s *Store) AcknowledgeOrder(ctx context.Context, id string) (orders.Order, error) {
	return s.mutateOrder(ctx, id, func(o *orders.Order) error {
		s.engine.Acknowledge(o)
		return nil
	})
}

// DeleteOrder removes one order.
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return orderNotFound(id)
	}
	s.state.Orders = append(s.state.Orders[:idx:idx], s.state.Orders[idx+1:]...)
	return s.persistLocked(ctx)
}

// ClearOrders removes every order. The number counter keeps running.
func (s *Store) ClearOrders(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Orders = []orders.Order{}
	return s.persistLocked(ctx)
}

// mutateOrder applies fn to a copy of the order and commits it only when fn
// succeeds, so rejected updates leave state untouched.
func (s *Store) mutateOrder(ctx context.Context, id string, fn func(*orders.Order) error) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return orders.Order{}, orderNotFound(id)
	}
	o := s.state.Orders[idx].Clone()
	before := len(o.StatusHistory)
	previous := o.Status
	if err := fn(&o); err != nil {
		return orders.Order{}, err
	}
	s.state.Orders[idx] = o
	if o.Status != previous || len(o.StatusHistory) > before {
		s.recorder.OrderTransitioned(o.Status)
	}
	return o.Clone(), s.persistLocked(ctx)
}

func (s *Store) indexOf(id string) int {
	for i, o := range s.state.Orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func orderNotFound(id string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
		WithDetails(map[string]any{"orderId": id})
}
