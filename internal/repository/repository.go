package repository

import (
	"context"

	"github.com/mr1hm/go-org-boundaries/internal/models"
	"github.com/mr1hm/go-org-boundaries/internal/source"
)

// Store is a local copy of the data source. It lists the same pages a
// remote source would, and can be filled from a loaded snapshot.
type Store interface {
	source.Source
	SaveSnapshot(ctx context.Context, snap *models.Snapshot) error
	Close() error
}

var _ Store = (*SQLiteDB)(nil)
