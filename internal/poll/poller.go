package poll

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/stallpos/internal/orders"
	pkgerrors "github.com/angelmondragon/stallpos/pkg/errors"
	"github.com/angelmondragon/stallpos/pkg/logger"
	"github.com/angelmondragon/stallpos/pkg/metrics"
)

const DefaultInterval = 1500 * time.Millisecond

// Source is the read side of the API the poller mirrors.
type Source interface {
	State(ctx context.Context) (bool, error)
	Orders(ctx context.Context, filter orders.Filter) ([]orders.Order, error)
}

// Snapshot is the shared view every display reconciles against.
type Snapshot struct {
	Pause  bool
	Orders []orders.Order
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Pause: s.Pause, Orders: orders.CloneAll(s.Orders)}
}

// Listener receives a fresh copy of the snapshot after every change.
type Listener func(Snapshot)

// Params configure a Poller.
type Params struct {
	Source   Source
	Logger   *logger.Logger
	Metrics  *metrics.PollMetrics
	Interval time.Duration
	Name     string
}

// Poller keeps the last fetched snapshot and notifies listeners when a fetch
// differs from it.
type Poller struct {
	source   Source
	logg     *logger.Logger
	metrics  *metrics.PollMetrics
	interval time.Duration
	name     string

	mu          sync.Mutex
	current     Snapshot
	initialized bool
	listeners   map[int]Listener
	nextID      int
}

// New builds a poller.
func New(params Params) (*Poller, error) {
	if params.Source == nil {
		return nil, fmt.Errorf("source required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:    params.Source,
		logg:      params.Logger,
		metrics:   params.Metrics,
		interval:  interval,
		name:      params.Name,
		listeners: map[int]Listener{},
	}, nil
}

// Snapshot returns a copy of the cached snapshot and whether the first fetch
// has completed.
func (p *Poller) Snapshot() (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.Clone(), p.initialized
}

// Subscribe registers l and, once the poller holds a snapshot, delivers it
// right away. The returned func removes the listener.
func (p *Poller) Subscribe(l Listener) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	ready := p.initialized
	snap := p.current.Clone()
	p.mu.Unlock()

	if ready {
		l(snap)
	}
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// Poll fetches once and reconciles. The first successful fetch seeds the
// cache and is delivered to listeners that subscribed before it; later
// fetches notify only on change.
func (p *Poller) Poll(ctx context.Context) (bool, error) {
	start := time.Now()
	next, err := p.fetch(ctx)
	p.metrics.ObserveDuration(p.name, time.Since(start))
	if err != nil {
		p.metrics.IncFailure(p.name)
		return false, err
	}
	p.metrics.IncSuccess(p.name)

	p.mu.Lock()
	if p.initialized && reflect.DeepEqual(p.current, next) {
		p.mu.Unlock()
		return false, nil
	}
	first := !p.initialized
	p.current = next
	p.initialized = true
	listeners := make([]Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.mu.Unlock()

	if !first {
		p.metrics.IncChange(p.name)
	}
	for _, l := range listeners {
		l(next.Clone())
	}
	return true, nil
}

func (p *Poller) fetch(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pause, err := p.source.State(gctx)
		if err != nil {
			return fmt.Errorf("fetch state: %w", err)
		}
		snap.Pause = pause
		return nil
	})
	g.Go(func() error {
		list, err := p.source.Orders(gctx, orders.Filter{})
		if err != nil {
			return fmt.Errorf("fetch orders: %w", err)
		}
		snap.Orders = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if snap.Orders == nil {
		snap.Orders = []orders.Order{}
	}
	orders.SortByCreated(snap.Orders)
	return snap, nil
}

// Run polls immediately and then on every tick until ctx is canceled.
// Failed polls are logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = p.logg.WithDisplay(ctx, p.name)
	p.runCycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logg.Info(ctx, "poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.runCycle(ctx)
		}
	}
}

func (p *Poller) runCycle(ctx context.Context) {
	changed, err := p.Poll(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logg.Error(p.logg.WithField(ctx, "retryable", pkgerrors.Retryable(err)), "poll.failed", err)
		}
		return
	}
	if changed {
		p.logg.Debug(ctx, "poll.changed")
	}
}
