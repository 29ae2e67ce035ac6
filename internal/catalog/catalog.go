// Package catalog serves training programs from an in-memory snapshot of the
// formations table, refreshed after a TTL or whenever an admin edits it.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/diewo77/go-formations/internal/models"
	"github.com/diewo77/go-formations/internal/store"
)

type Catalog struct {
	repo store.Formations
	ttl  time.Duration
	now  func() time.Time

	mu        sync.RWMutex
	items     []models.Formation
	bySlug    map[string]int
	expiresAt time.Time
	// gen counts invalidations; a load started under an older gen is not cached.
	gen uint64
}

// New wraps repo with caching. A ttl <= 0 reloads on every read.
func New(repo store.Formations, ttl time.Duration) *Catalog {
	return &Catalog{repo: repo, ttl: ttl, now: time.Now}
}

func (c *Catalog) snapshot(ctx context.Context) ([]models.Formation, map[string]int, error) {
	// Check cache first (read lock)
	c.mu.RLock()
	items, idx, exp, gen := c.items, c.bySlug, c.expiresAt, c.gen
	c.mu.RUnlock()
	if idx != nil && c.now().Before(exp) {
		return items, idx, nil
	}

	// Cache miss or expired - fetch from the repository
	fresh, err := c.repo.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	freshIdx := make(map[string]int, len(fresh))
	for i, f := range fresh {
		freshIdx[f.Slug] = i
	}
	if c.ttl > 0 {
		c.mu.Lock()
		if c.gen == gen {
			c.items, c.bySlug, c.expiresAt = fresh, freshIdx, c.now().Add(c.ttl)
		}
		c.mu.Unlock()
	}
	return fresh, freshIdx, nil
}

// List returns the programs matching f, ordered by title.
func (c *Catalog) List(ctx context.Context, f Filter) ([]models.Formation, error) {
	items, _, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Formation, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Get returns the program with slug, or an error wrapping store.ErrNotFound.
func (c *Catalog) Get(ctx context.Context, slug string) (models.Formation, error) {
	items, idx, err := c.snapshot(ctx)
	if err != nil {
		return models.Formation{}, err
	}
	i, ok := idx[slug]
	if !ok {
		return models.Formation{}, fmt.Errorf("formation %q: %w", slug, store.ErrNotFound)
	}
	return items[i], nil
}

func (c *Catalog) Create(ctx context.Context, f *models.Formation) error {
	defer c.Invalidate()
	return c.repo.Create(ctx, f)
}

func (c *Catalog) Update(ctx context.Context, f *models.Formation) error {
	defer c.Invalidate()
	return c.repo.Update(ctx, f)
}

func (c *Catalog) Delete(ctx context.Context, slug string) error {
	defer c.Invalidate()
	return c.repo.Delete(ctx, slug)
}

// Invalidate drops the snapshot so the next read hits the repository.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.items, c.bySlug, c.expiresAt = nil, nil, time.Time{}
	c.gen++
	c.mu.Unlock()
}
