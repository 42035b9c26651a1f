package trigger

import (
	"context"

	"db-refcheck/internal/logger"
)

// CatalogUpdater is the part of schema.Catalog a Delta is applied to.
type CatalogUpdater interface {
	AddTables(ctx context.Context, names ...string) error
	RemoveTables(names ...string)
	InvalidateEmpty(names ...string)
	RefreshModel(ctx context.Context)
}

// Apply brings the catalog in line with a committed Delta: dropped tables
// are removed, created and altered ones re-read, emptiness answers for
// written tables forgotten, and the entity model refreshed when the
// registry changed.
func Apply(ctx context.Context, cat CatalogUpdater, d Delta) error {
	if d.Empty() {
		return nil
	}
	log := logger.L()

	if len(d.Dropped) > 0 {
		log.Debugf("Removing dropped tables %v", d.Dropped)
		cat.RemoveTables(d.Dropped...)
	}

	changed := append(append([]string(nil), d.Created...), d.Altered...)
	if len(changed) > 0 {
		log.Debugf("Re-reading tables %v", changed)
		if err := cat.AddTables(ctx, changed...); err != nil {
			return err
		}
	}

	if len(d.Modified) > 0 {
		cat.InvalidateEmpty(d.Modified...)
	}

	if d.RegistryChanged {
		log.Infof("Entity registry changed, refreshing model")
		cat.RefreshModel(ctx)
	}
	return nil
}
