// Package directory holds the session-wide category cache: a bidirectional
// slug/id mapping loaded lazily from the backend and kept for the life of
// the process.
package directory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront-gateway/internal/domain"
)

// FetchFunc loads the full category list from the backend. Injected so
// tests can substitute a fake.
type FetchFunc func(ctx context.Context) ([]domain.Category, error)

// Directory resolves category slugs to ids against an in-memory snapshot.
// The snapshot is written exactly once, on the first successful preload;
// concurrent cold-start callers share a single fetch.
type Directory struct {
	fetch   FetchFunc
	timeout time.Duration
	logger  *zap.Logger

	group singleflight.Group

	mu     sync.RWMutex
	loaded bool
	bySlug map[string]string
	byID   map[string]domain.Category
}

// New builds a Directory around fetch. timeout bounds each preload attempt
// so a hung backend cannot block slug resolution indefinitely.
func New(fetch FetchFunc, timeout time.Duration, logger *zap.Logger) *Directory {
	return &Directory{
		fetch:   fetch,
		timeout: timeout,
		logger:  logger,
		bySlug:  make(map[string]string),
		byID:    make(map[string]domain.Category),
	}
}

// Preload populates the cache. Idempotent: once loaded it returns
// immediately, and concurrent callers during a cold start share one fetch.
// A failed attempt is retried once before the error is reported.
func (d *Directory) Preload(ctx context.Context) error {
	d.mu.RLock()
	loaded := d.loaded
	d.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := d.group.Do("preload", func() (interface{}, error) {
		d.mu.RLock()
		loaded := d.loaded
		d.mu.RUnlock()
		if loaded {
			return nil, nil
		}

		// The fetch is shared by every singleflight joiner, so it must not
		// die with the first caller's request context. The preload timeout
		// still bounds it.
		fetchCtx := context.WithoutCancel(ctx)

		cats, err := d.fetchOnce(fetchCtx)
		if err != nil {
			d.logger.Warn("category preload failed, retrying once", zap.Error(err))
			cats, err = d.fetchOnce(fetchCtx)
		}
		if err != nil {
			return nil, err
		}

		d.populate(cats)
		return nil, nil
	})
	return err
}

func (d *Directory) fetchOnce(ctx context.Context) ([]domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.fetch(ctx)
}

func (d *Directory) populate(cats []domain.Category) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range cats {
		slug := domain.NormalizeSlug(c.Slug)
		if slug == "" {
			continue
		}
		if existing, ok := d.bySlug[slug]; ok && existing != c.ID {
			// Slugs are bijective with ids by contract; a duplicate is a
			// backend data error. Keep the first record.
			d.logger.Error("duplicate category slug",
				zap.String("slug", slug),
				zap.String("kept", existing),
				zap.String("dropped", c.ID))
			continue
		}
		d.bySlug[slug] = c.ID
		d.byID[c.ID] = c
	}
	d.loaded = true
}

// IDFromSlug resolves a slug to its category id. Input is trimmed and
// lowercased. When the cache cannot be loaded even after the preload retry,
// one uncached fetch is attempted for this request alone; if that also
// fails the resolution fails closed as not found, carrying the cause.
func (d *Directory) IDFromSlug(ctx context.Context, slug string) (string, error) {
	c, err := d.CategoryFromSlug(ctx, slug)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// CategoryFromSlug returns the cached category record for slug.
func (d *Directory) CategoryFromSlug(ctx context.Context, slug string) (*domain.Category, error) {
	key := domain.NormalizeSlug(slug)
	if key == "" {
		return nil, domain.ErrNotFound
	}

	if err := d.Preload(ctx); err != nil {
		return d.lookupDirect(ctx, key, err)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.bySlug[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := d.byID[id]
	return &c, nil
}

// CategoryByID returns the cached record for id, if present.
func (d *Directory) CategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	if err := d.Preload(ctx); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

// All returns the cached category snapshot.
func (d *Directory) All(ctx context.Context) ([]domain.Category, error) {
	if err := d.Preload(ctx); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.Category, 0, len(d.byID))
	for _, c := range d.byID {
		out = append(out, c)
	}
	return out, nil
}

// lookupDirect bypasses the broken cache with a one-off fetch. Nothing is
// cached from it; the next caller gets a fresh preload attempt.
func (d *Directory) lookupDirect(ctx context.Context, key string, preloadErr error) (*domain.Category, error) {
	cats, err := d.fetchOnce(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: slug %q unresolvable, preload failed: %v", domain.ErrNotFound, key, preloadErr)
	}
	for _, c := range cats {
		if domain.NormalizeSlug(c.Slug) == key {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}
