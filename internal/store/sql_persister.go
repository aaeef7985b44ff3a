package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/stallpos/pkg/db"
	"github.com/angelmondragon/stallpos/pkg/db/models"
)

// SQLPersister keeps the document in a single row of the snapshots table.
type SQLPersister struct {
	client *db.Client
	key    string
}

// NewSQLPersister migrates the snapshots table and returns a persister bound
// to key.
func NewSQLPersister(ctx context.Context, client *db.Client, key string) (*SQLPersister, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if key == "" {
		return nil, fmt.Errorf("snapshot key required")
	}
	if err := client.DB().WithContext(ctx).AutoMigrate(&models.Snapshot{}); err != nil {
		return nil, fmt.Errorf("migrate snapshots: %w", err)
	}
	return &SQLPersister{client: client, key: key}, nil
}

func (p *SQLPersister) Load(ctx context.Context) ([]byte, error) {
	var snap models.Snapshot
	err := p.client.DB().WithContext(ctx).Where("snapshot_key = ?", p.key).Take(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return []byte(snap.Document), nil
}

func (p *SQLPersister) Save(ctx context.Context, doc []byte) error {
	return p.client.WithTx(ctx, func(tx *gorm.DB) error {
		snap := models.Snapshot{Key: p.key, Document: string(doc)}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "snapshot_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
		}).Create(&snap).Error
		if err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		return nil
	})
}

func (p *SQLPersister) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
