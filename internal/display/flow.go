package display

import (
	"context"
	"sync"

	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/pkg/logger"
)

// BoardSource serves the kitchen board as laid out by the API.
type BoardSource interface {
	KitchenBoard(ctx context.Context, filter orders.Filter) (Board, error)
}

// ServerFlow adopts the order flow the API advertises on its kitchen board,
// so a headless screen never lays out columns the server does not use. Until
// the API answers with a valid flow the local fallback is used.
type ServerFlow struct {
	src      BoardSource
	fallback orders.Flow
	logg     *logger.Logger

	mu       sync.Mutex
	flow     orders.Flow
	resolved bool
}

func NewServerFlow(src BoardSource, fallback orders.Flow, logg *logger.Logger) *ServerFlow {
	return &ServerFlow{src: src, fallback: fallback, logg: logg}
}

// Flow returns the server's flow once it has been fetched, retrying on each
// call until then.
func (f *ServerFlow) Flow(ctx context.Context) orders.Flow {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolved {
		return f.flow
	}

	board, err := f.src.KitchenBoard(ctx, orders.Filter{})
	if err != nil {
		f.logg.Warn(f.logg.WithField(ctx, "error", err.Error()), "kds.flow_unavailable")
		return f.fallback
	}
	flow, err := orders.NewFlow(board.Flow...)
	if err != nil {
		f.logg.Error(ctx, "kds.flow_invalid", err)
		return f.fallback
	}
	f.logg.Info(f.logg.WithField(ctx, "flow", flow.Statuses()), "kds.flow_resolved")
	f.flow = flow
	f.resolved = true
	return flow
}
