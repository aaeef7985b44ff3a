package store

import (
	"context"
	"fmt"

	pkgredis "github.com/angelmondragon/stallpos/pkg/redis"
)

// RedisPersister keeps the document under one namespaced key with no expiry.
type RedisPersister struct {
	store pkgredis.SnapshotStore
	key   string
}

func NewRedisPersister(store pkgredis.SnapshotStore, name string) (*RedisPersister, error) {
	if store == nil {
		return nil, fmt.Errorf("redis store required")
	}
	if name == "" {
		return nil, fmt.Errorf("snapshot key required")
	}
	return &RedisPersister{store: store, key: store.SnapshotKey(name)}, nil
}

func (p *RedisPersister) Load(ctx context.Context) ([]byte, error) {
	doc, err := p.store.Get(ctx, p.key)
	if pkgredis.IsNil(err) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return []byte(doc), nil
}

func (p *RedisPersister) Save(ctx context.Context, doc []byte) error {
	if err := p.store.Set(ctx, p.key, string(doc), 0); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (p *RedisPersister) Ping(ctx context.Context) error {
	return p.store.Ping(ctx)
}
