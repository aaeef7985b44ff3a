package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/stallpos/api/responses"
	"github.com/angelmondragon/stallpos/api/validators"
	"github.com/angelmondragon/stallpos/pkg/coerce"
	"github.com/angelmondragon/stallpos/pkg/logger"
)

// StateService reads and writes the pause flag.
type StateService interface {
	Pause() bool
	SetPause(ctx context.Context, pause bool) (bool, error)
}

type stateResponse struct {
	Pause bool `json:"pause"`
}

func GetState(svc StateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, stateResponse{Pause: svc.Pause()})
	}
}

// SetPause accepts any truthy or falsy pause value.
func SetPause(svc StateService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Pause any `json:"pause"`
		}
		if err := validators.DecodeLenientBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pause, err := svc.SetPause(r.Context(), coerce.Truthy(payload.Pause))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stateResponse{Pause: pause})
	}
}
