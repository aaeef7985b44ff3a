package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/stallpos/api/responses"
	"github.com/angelmondragon/stallpos/api/validators"
	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/stallpos/pkg/errors"
	"github.com/angelmondragon/stallpos/pkg/logger"
)

// OrderService is the order side of the store.
type OrderService interface {
	Engine() *orders.Engine
	Orders(filter orders.Filter) []orders.Order
	Order(id string) (orders.Order, error)
	CreateOrder(ctx context.Context, in orders.CreateInput) (orders.Order, error)
	PatchOrder(ctx context.Context, id string, p orders.Patch) (orders.Order, error)
	SetOrderStatus(ctx context.Context, id string, status enums.OrderStatus) (orders.Order, error)
	AdvanceOrder(ctx context.Context, id string) (orders.Order, error)
	RevertOrder(ctx context.Context, id string) (orders.Order, error)
	AcknowledgeOrder(ctx context.Context, id string) (orders.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	ClearOrders(ctx context.Context) error
}

func ListOrders(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.Orders(filter))
	}
}

func GetOrder(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Order(id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// CreateOrder accepts a loosely typed payload; lines are sanitized and the
// server assigns id, number and timestamps.
func CreateOrder(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload orders.CreateInput
		if err := validators.DecodeLenientBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.CreateOrder(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithOrderID(r.Context(), order.ID)
		logg.Info(ctx, "order.created")
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func PatchOrder(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		raw, err := validators.ReadJSONBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		patch, err := orders.DecodePatch(raw, svc.Engine().Flow())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.PatchOrder(r.Context(), id, patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetOrderStatus jumps an order to any status of the active flow.
func SetOrderStatus(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		flow := svc.Engine().Flow()
		status, ok := flow.Parse(payload.Status)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown status").
				WithDetails(map[string]any{"status": payload.Status, "allowed": flow.Statuses()}))
			return
		}
		order, err := svc.SetOrderStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func AdvanceOrder(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return orderAction(logg, svc.AdvanceOrder)
}

func RevertOrder(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return orderAction(logg, svc.RevertOrder)
}

func AcknowledgeOrder(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return orderAction(logg, svc.AcknowledgeOrder)
}

func DeleteOrder(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteOrder(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// ClearOrders drops every order. The number counter keeps counting.
func ClearOrders(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearOrders(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Warn(r.Context(), "orders.cleared")
		responses.WriteNoContent(w)
	}
}

func orderAction(logg *logger.Logger, action func(context.Context, string) (orders.Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := action(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func orderID(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return id, nil
}

func parseFilter(r *http.Request) (orders.Filter, error) {
	status, err := validators.ParseQueryStatus(r, "status")
	if err != nil {
		return orders.Filter{}, err
	}
	category, err := validators.ParseQueryCategory(r, "category")
	if err != nil {
		return orders.Filter{}, err
	}
	return orders.Filter{
		Status:   status,
		Category: category,
		Query:    validators.QuerySearch(r, "q"),
	}, nil
}
