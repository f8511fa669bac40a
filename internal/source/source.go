package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mr1hm/go-org-boundaries/internal/metrics"
	"github.com/mr1hm/go-org-boundaries/internal/models"
	"github.com/mr1hm/go-org-boundaries/internal/worker"
)

const DefaultPageSize = 200

// Page selects one page of a listing. Index is zero-based.
type Page struct {
	Index      int
	Size       int
	ActiveOnly bool
	Types      []models.OrgType // organizations only
}

// Source lists the three entity collections page by page.
type Source interface {
	ListOrganizations(ctx context.Context, p Page) ([]models.Organization, error)
	ListLocations(ctx context.Context, p Page) ([]models.Location, error)
	ListEvents(ctx context.Context, p Page) ([]models.Event, error)
}

// FetchAll pages through a listing until a page comes back shorter than
// requested. No total count is assumed.
func FetchAll[T any](ctx context.Context, collection string, base Page, fetch func(context.Context, Page) ([]T, error)) ([]T, error) {
	if base.Size <= 0 {
		base.Size = DefaultPageSize
	}
	var all []T
	for p := base; ; p.Index++ {
		items, err := fetch(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("error fetching %s page %d: %w", collection, p.Index, err)
		}
		metrics.PagesFetchedTotal.WithLabelValues(collection).Inc()
		all = append(all, items...)
		if len(items) < p.Size {
			return all, nil
		}
	}
}

type LoadOptions struct {
	PageSize   int
	ActiveOnly bool
	Types      []models.OrgType
}

// Load fetches organizations, locations and events concurrently and waits
// for all three. Any failure fails the whole load.
func Load(ctx context.Context, src Source, opts LoadOptions) (*models.Snapshot, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	base := Page{Size: opts.PageSize, ActiveOnly: opts.ActiveOnly}
	snap := &models.Snapshot{}

	jobs := []func(context.Context) error{
		func(ctx context.Context) error {
			p := base
			p.Types = opts.Types
			orgs, err := FetchAll(ctx, "organizations", p, src.ListOrganizations)
			snap.Organizations = orgs
			return err
		},
		func(ctx context.Context) error {
			locs, err := FetchAll(ctx, "locations", base, src.ListLocations)
			snap.Locations = locs
			return err
		},
		func(ctx context.Context) error {
			events, err := FetchAll(ctx, "events", base, src.ListEvents)
			snap.Events = events
			return err
		},
	}

	pool := worker.NewWorkerPool(len(jobs), len(jobs), func(ctx context.Context, job worker.Job) error {
		if err := job.(func(context.Context) error)(ctx); err != nil {
			cancel()
			return err
		}
		return nil
	})
	pool.Start(ctx)
	for _, j := range jobs {
		pool.Submit(j)
	}
	if err := pool.Stop(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("error loading snapshot: %w", err)
	}

	metrics.LoadDurationSeconds.Observe(time.Since(start).Seconds())
	slog.Info("snapshot loaded",
		"organizations", len(snap.Organizations),
		"locations", len(snap.Locations),
		"events", len(snap.Events),
		"duration", time.Since(start),
	)
	return snap, nil
}
