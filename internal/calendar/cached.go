package calendar

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultCacheTTL = 30 * 24 * time.Hour

// HolidayCache persists fetched holiday lists between runs
type HolidayCache interface {
	// LoadHolidays returns the cached holidays of a year and when they were fetched.
	// A year never cached returns nil holidays and no error.
	LoadHolidays(ctx context.Context, year int) ([]Holiday, time.Time, error)
	// SaveHolidays replaces the cached holidays of a year
	SaveHolidays(ctx context.Context, year int, holidays []Holiday, fetchedAt time.Time) error
}

// CachedProvider wraps a Provider with an in-memory and a persistent cache
type CachedProvider struct {
	provider Provider
	cache    HolidayCache
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.RWMutex
	memory map[int]*cachedYear
}

type cachedYear struct {
	holidays  []Holiday
	fetchedAt time.Time
}

// NewCachedProvider creates a new CachedProvider; cache may be nil for memory-only caching
func NewCachedProvider(provider Provider, cache HolidayCache, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		memory:   make(map[int]*cachedYear),
	}
}

// Holidays returns fresh cached holidays, fetching through the provider when stale.
// On provider failure a stale entry is served instead of the error.
func (cp *CachedProvider) Holidays(ctx context.Context, year int) ([]Holiday, error) {
	// 1. Memory, then the persistent cache
	stale := cp.lookup(ctx, year)
	if stale != nil && cp.now().Sub(stale.fetchedAt) < cp.ttl {
		cp.logger.Debug("Using cached holidays", zap.Int("year", year))
		return stale.holidays, nil
	}

	// 2. Fetch
	holidays, err := cp.provider.Holidays(ctx, year)
	if err != nil {
		if stale != nil {
			cp.logger.Warn("Holiday provider failed, using stale cache",
				zap.Int("year", year),
				zap.Time("fetched_at", stale.fetchedAt),
				zap.Error(err))
			return stale.holidays, nil
		}
		return nil, err
	}

	// 3. Remember
	entry := &cachedYear{holidays: holidays, fetchedAt: cp.now()}
	cp.mu.Lock()
	cp.memory[year] = entry
	cp.mu.Unlock()

	if cp.cache != nil {
		if err := cp.cache.SaveHolidays(ctx, year, holidays, entry.fetchedAt); err != nil {
			cp.logger.Warn("Failed to persist holidays",
				zap.Int("year", year),
				zap.Error(err))
		}
	}

	return holidays, nil
}

func (cp *CachedProvider) lookup(ctx context.Context, year int) *cachedYear {
	cp.mu.RLock()
	entry, ok := cp.memory[year]
	cp.mu.RUnlock()
	if ok || cp.cache == nil {
		return entry
	}

	holidays, fetchedAt, err := cp.cache.LoadHolidays(ctx, year)
	if err != nil {
		cp.logger.Warn("Failed to read holiday cache",
			zap.Int("year", year),
			zap.Error(err))
		return nil
	}
	if holidays == nil {
		return nil
	}

	entry = &cachedYear{holidays: holidays, fetchedAt: fetchedAt}
	cp.mu.Lock()
	cp.memory[year] = entry
	cp.mu.Unlock()

	return entry
}
