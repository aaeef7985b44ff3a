package display

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/pkg/enums"
	"github.com/angelmondragon/stallpos/pkg/logger"
)

// Acknowledger marks a ready order as announced.
type Acknowledger interface {
	AcknowledgeOrder(ctx context.Context, id string) (orders.Order, error)
}

// AnnounceFunc is called once per ready order before it is acknowledged.
type AnnounceFunc func(ctx context.Context, o orders.Order)

// Announcer calls out newly ready orders on the call screen and acknowledges
// them so other call screens stay quiet.
type Announcer struct {
	ack      Acknowledger
	logg     *logger.Logger
	announce AnnounceFunc

	mu        sync.Mutex
	announced map[string]int64
}

// NewAnnouncer builds an announcer. A nil announce hook only logs.
func NewAnnouncer(ack Acknowledger, logg *logger.Logger, announce AnnounceFunc) (*Announcer, error) {
	if ack == nil {
		return nil, fmt.Errorf("acknowledger required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Announcer{
		ack:       ack,
		logg:      logg,
		announce:  announce,
		announced: map[string]int64{},
	}, nil
}

// Announce handles every unacknowledged order in the view's ready queue and
// returns how many were announced. An order is announced once per entry into
// ready; failed acknowledgements are retried on the next call.
func (a *Announcer) Announce(ctx context.Context, view CallView) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	visible := make(map[string]struct{}, len(view.Ready))
	var errs error
	count := 0
	for _, o := range view.Ready {
		visible[o.ID] = struct{}{}
		if o.ReadyAcknowledged {
			continue
		}
		readyAt := orders.EnteredAt(o, enums.OrderStatusReady)
		if at, ok := a.announced[o.ID]; ok && at == readyAt {
			continue
		}

		orderCtx := a.logg.WithOrderID(ctx, o.ID)
		orderCtx = a.logg.WithField(orderCtx, "number", o.Number)
		if a.announce != nil {
			a.announce(orderCtx, o)
		}
		a.logg.Info(orderCtx, "call.announce")
		count++

		if _, err := a.ack.AcknowledgeOrder(ctx, o.ID); err != nil {
			a.logg.Error(orderCtx, "call.acknowledge_failed", err)
			errs = multierr.Append(errs, fmt.Errorf("acknowledge %s: %w", o.ID, err))
			continue
		}
		a.announced[o.ID] = readyAt
	}

	for id := range a.announced {
		if _, ok := visible[id]; !ok {
			delete(a.announced, id)
		}
	}
	return count, errs
}
