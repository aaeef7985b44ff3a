package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/pkg/db"
)

func TestFilePersisterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	p := NewFilePersister(path)
	ctx := context.Background()

	_, err := p.Load(ctx)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	require.NoError(t, p.Save(ctx, []byte(`{"pause":true}`)))
	require.NoError(t, p.Save(ctx, []byte(`{"pause":false}`)))

	doc, err := p.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pause":false}`, string(doc))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
	assert.NoError(t, p.Ping(ctx))
}

func TestFilePersisterBacksStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, _, _ := newTestStore(t, NewFilePersister(path), orders.FullFlow())
	_, err := s.CreateOrder(context.Background(), createInput(t, classicPayload))
	require.NoError(t, err)

	reloaded, _, _ := newTestStore(t, NewFilePersister(path), orders.FullFlow())
	require.Len(t, reloaded.Snapshot().Orders, 1)
	assert.Equal(t, int64(1), reloaded.Snapshot().CurrentOrderNumber)
}

func newSQLClient(t *testing.T) *db.Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db.Wrap(conn)
}

func TestSQLPersisterUpserts(t *testing.T) {
	ctx := context.Background()
	client := newSQLClient(t)
	p, err := NewSQLPersister(ctx, client, "state")
	require.NoError(t, err)

	_, err = p.Load(ctx)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	require.NoError(t, p.Save(ctx, []byte(`{"v":1}`)))
	require.NoError(t, p.Save(ctx, []byte(`{"v":2}`)))

	doc, err := p.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(doc))

	var count int64
	require.NoError(t, client.DB().Table("snapshots").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	other, err := NewSQLPersister(ctx, client, "other")
	require.NoError(t, err)
	_, err = other.Load(ctx)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSQLPersisterRequiresKey(t *testing.T) {
	_, err := NewSQLPersister(context.Background(), newSQLClient(t), "")
	assert.Error(t, err)
	_, err = NewSQLPersister(context.Background(), nil, "state")
	assert.Error(t, err)
}

type fakeSnapshotStore struct {
	values map[string]string
	getErr error
}

func (f *fakeSnapshotStore) Ping(context.Context) error { return nil }

func (f *fakeSnapshotStore) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeSnapshotStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeSnapshotStore) SnapshotKey(name string) string {
	return "stallpos:snapshot:" + name
}

func TestRedisPersister(t *testing.T) {
	ctx := context.Background()
	fake := &fakeSnapshotStore{values: map[string]string{}}
	p, err := NewRedisPersister(fake, "state")
	require.NoError(t, err)

	_, err = p.Load(ctx)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	require.NoError(t, p.Save(ctx, []byte(`{"pause":true}`)))
	assert.Equal(t, `{"pause":true}`, fake.values["stallpos:snapshot:state"])

	doc, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"pause":true}`, string(doc))

	fake.getErr = errors.New("connection refused")
	_, err = p.Load(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSnapshotNotFound)
}
