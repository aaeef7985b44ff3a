package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/angelmondragon/stallpos/internal/catalog"
	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/stallpos/pkg/errors"
	"github.com/angelmondragon/stallpos/pkg/logger"
)

// Recorder receives store-level events for metrics.
type Recorder interface {
	OrderCreated()
	OrderTransitioned(status enums.OrderStatus)
	PersistFailed()
}

type noopRecorder struct{}

func (noopRecorder) OrderCreated()                       {}
func (noopRecorder) OrderTransitioned(enums.OrderStatus) {}
func (noopRecorder) PersistFailed()                      {}

// Options wires the store's collaborators. Engine and Registry default to the
// full flow and the built-in templates.
type Options struct {
	Engine   *orders.Engine
	Registry *catalog.Registry
	Logger   *logger.Logger
	Recorder Recorder
}

// Store is the single writer over the state document. Every exported method
// takes the mutex, and every returned value is a copy.
type Store struct {
	mu        sync.Mutex
	state     State
	persister Persister
	engine    *orders.Engine
	registry  *catalog.Registry
	logg      *logger.Logger
	recorder  Recorder
}

// New builds a store over p. Call Load before serving requests.
func New(p Persister, opts Options) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("persister required")
	}
	if opts.Engine == nil {
		opts.Engine = orders.NewEngine(orders.FullFlow(), nil)
	}
	if opts.Registry == nil {
		opts.Registry = catalog.DefaultRegistry()
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}
	return &Store{
		state:     seedState(),
		persister: p,
		engine:    opts.Engine,
		registry:  opts.Registry,
		logg:      opts.Logger,
		recorder:  opts.Recorder,
	}, nil
}

// Engine exposes the lifecycle engine the store runs.
func (s *Store) Engine() *orders.Engine {
	return s.engine
}

// Registry exposes the option template registry.
func (s *Store) Registry() *catalog.Registry {
	return s.registry
}

// Load reads the persisted document and sanitizes it. A missing or malformed
// document is replaced by the seed state, which is written back immediately.
// Read failures other than a missing snapshot are returned.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.persister.Load(ctx)
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		s.info(ctx, "no stored state, seeding defaults")
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load state")
	default:
		if state, ok := decodeState(data, s.engine); ok {
			s.state = state
			return nil
		}
		s.warn(ctx, "stored state is malformed, seeding defaults")
	}

	s.state = seedState()
	return s.persistLocked(ctx)
}

// Save writes the current state through the persister.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

// Ping checks the persister.
func (s *Store) Ping(ctx context.Context) error {
	return s.persister.Ping(ctx)
}

// Snapshot returns a copy of the whole document.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Pause reports whether order intake is paused.
func (s *Store) Pause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Pause
}

// SetPause sets the pause flag. The returned value reflects memory even when
// persisting fails.
func (s *Store) SetPause(ctx context.Context, pause bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Pause = pause
	return pause, s.persistLocked(ctx)
}

// persistLocked serializes and saves the state. On failure memory keeps the
// new state and the caller gets a PERSISTENCE_ERROR.
func (s *Store) persistLocked(ctx context.Context) error {
	doc, err := encodeState(s.state)
	if err == nil {
		err = s.persister.Save(ctx, doc)
	}
	if err != nil {
		s.recorder.PersistFailed()
		if s.logg != nil {
			s.logg.Error(ctx, "store.persist_failed", err)
		}
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "persist state")
	}
	return nil
}

func (s *Store) info(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Info(ctx, msg)
	}
}

func (s *Store) warn(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Warn(ctx, msg)
	}
}
