package cache

import (
	"context"
	"strconv"

	"golang.org/x/sync/singleflight"

	"fincharts/internal/core"
	ports "fincharts/internal/sheets"
)

var _ ports.LedgerReadWriter = (*LedgerLoader)(nil)

// LedgerLoader caches ReadLedger results per year in front of a slow backend
// (the Sheets API). Concurrent misses for the same year share one backend
// call. Writes go straight through and refresh the cached year.
type LedgerLoader struct {
	next     ports.LedgerReadWriter
	cache    *LRUCache[core.LedgerData]
	group    singleflight.Group
	onLookup func(hit bool)
}

// LoaderOption configures a LedgerLoader.
type LoaderOption func(*LedgerLoader)

// WithLookupObserver is called on every ReadLedger with whether the cache hit.
func WithLookupObserver(fn func(hit bool)) LoaderOption {
	return func(l *LedgerLoader) { l.onLookup = fn }
}

func NewLedgerLoader(next ports.LedgerReadWriter, c *LRUCache[core.LedgerData], opts ...LoaderOption) *LedgerLoader {
	l := &LedgerLoader{next: next, cache: c}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *LedgerLoader) ReadLedger(ctx context.Context, year int) (core.LedgerData, error) {
	key := strconv.Itoa(year)
	if d, ok := l.cache.Get(key); ok {
		l.observe(true)
		return d.Clone(), nil
	}
	l.observe(false)

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		d, err := l.next.ReadLedger(ctx, year)
		if err != nil {
			return core.LedgerData{}, err
		}
		l.cache.Set(key, d)
		return d, nil
	})
	if err != nil {
		return core.LedgerData{}, err
	}
	return v.(core.LedgerData).Clone(), nil
}

func (l *LedgerLoader) WriteLedger(ctx context.Context, d core.LedgerData) (string, error) {
	ref, err := l.next.WriteLedger(ctx, d)
	if err != nil {
		l.Invalidate(d.Year)
		return "", err
	}
	l.cache.Set(strconv.Itoa(d.Year), d.Clone())
	return ref, nil
}

// Invalidate drops the cached year so the next read hits the backend.
func (l *LedgerLoader) Invalidate(year int) {
	l.cache.Delete(strconv.Itoa(year))
}

func (l *LedgerLoader) observe(hit bool) {
	if l.onLookup != nil {
		l.onLookup(hit)
	}
}
