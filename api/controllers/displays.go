package controllers

import (
	"net/http"

	"github.com/angelmondragon/stallpos/api/responses"
	"github.com/angelmondragon/stallpos/api/validators"
	"github.com/angelmondragon/stallpos/internal/display"
	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/pkg/logger"
)

const maxDisplayLimit = 50

// KitchenBoard serves the kitchen display columns for the active flow.
func KitchenBoard(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		board := display.BuildBoard(svc.Engine().Flow(), svc.Orders(orders.Filter{}), filter)
		responses.WriteSuccess(w, board)
	}
}

// CallView serves the pickup-call screen.
func CallView(svc OrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready, err := validators.ParseQueryInt(r, "ready", orders.DefaultReadyLimit, 1, maxDisplayLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recent, err := validators.ParseQueryInt(r, "recent", orders.DefaultPickupLimit, 1, maxDisplayLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view := display.BuildCallView(svc.Orders(orders.Filter{}), display.Limits{Ready: ready, Recent: recent})
		responses.WriteSuccess(w, view)
	}
}
