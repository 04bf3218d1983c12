// Package sos implements the emergency-contact refresh pipeline: a cached,
// search-backed, model-extracted, validated lookup that always returns a
// usable 5-contact set.
package sos

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/stressease/crisisline/internal/model"
	"github.com/stressease/crisisline/internal/policy"
	"github.com/stressease/crisisline/internal/store"
)

// fallbackReadTimeout bounds the cache read taken on the fallback path, so an
// abandoned caller still gets an answer promptly.
const fallbackReadTimeout = 2 * time.Second

// Pipeline orchestrates CheckCache → Search → Extract → Validate → CacheWrite
// with fallback to stale cache, then to the static default. No stage failure
// ever surfaces to the caller; the origin tag reports true provenance.
type Pipeline struct {
	store   store.Store
	search  SearchStage
	extract ExtractStage
	policy  *policy.Policy
	ttl     time.Duration
	overall time.Duration

	group singleflight.Group
	now   func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock injects a clock for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewPipeline creates a Pipeline. ttl is the cache freshness window; overall
// is the hard wall-clock bound on a whole fresh-fetch run.
func NewPipeline(st store.Store, search SearchStage, extract ExtractStage, pol *policy.Policy, ttl, overall time.Duration, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:   st,
		search:  search,
		extract: extract,
		policy:  pol,
		ttl:     ttl,
		overall: overall,
		now:     time.Now,
	}
	if p.ttl <= 0 {
		p.ttl = 30 * 24 * time.Hour
	}
	if p.overall <= 0 {
		p.overall = 90 * time.Second
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// GetContacts returns the emergency contact set for a country. It errors only
// on empty input; every stage failure resolves to a cached or default set.
func (p *Pipeline) GetContacts(ctx context.Context, country string) (*model.ContactSet, error) {
	return p.get(ctx, country, false)
}

// RefreshContacts bypasses the fresh-cache read and forces a live fetch. The
// fallback chain still applies when the fetch fails.
func (p *Pipeline) RefreshContacts(ctx context.Context, country string) (*model.ContactSet, error) {
	return p.get(ctx, country, true)
}

func (p *Pipeline) get(ctx context.Context, country string, force bool) (*model.ContactSet, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return nil, eris.New("pipeline: country must not be empty")
	}
	key := NormalizeCountry(country)

	if !force {
		entry, err := p.readCache(ctx, key)
		switch {
		case err != nil:
			// Cache unavailable, not a miss: soft failure, proceed to fetch.
			zap.L().Warn("pipeline: cache read failed, proceeding to fetch",
				zap.String("country", country),
				zap.Error(err),
			)
		case entry != nil && p.now().Sub(entry.FetchedAt) < p.ttl:
			return cachedSet(entry), nil
		}
	}

	// Stale or missing: at most one fresh fetch per country is in flight;
	// concurrent callers share its outcome. The fetch runs detached from the
	// caller so an abandoned request still populates the cache, bounded by
	// the overall deadline.
	fetchCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(key, func() (any, error) {
		return p.fetchFresh(fetchCtx, key, country)
	})

	select {
	case res := <-ch:
		if res.Err == nil {
			return res.Val.(*model.ContactSet).Clone(), nil
		}
		return p.fallback(ctx, key, country, res.Err), nil
	case <-ctx.Done():
		return p.fallback(context.WithoutCancel(ctx), key, country, ctx.Err()), nil
	}
}

// fetchFresh runs Search → Extract → Validate → CacheWrite. Stages execute
// strictly sequentially and are never retried within a run.
func (p *Pipeline) fetchFresh(ctx context.Context, key, country string) (*model.ContactSet, error) {
	ctx, cancel := context.WithTimeout(ctx, p.overall)
	defer cancel()

	now := p.now().UTC()
	year := now.Year()

	snippets, err := p.search.Search(ctx, country, year)
	if err != nil {
		return nil, err
	}

	cand, err := p.extract.Extract(ctx, country, year, snippets)
	if err != nil {
		return nil, err
	}
	cand.Country = country
	cand.Origin = model.OriginFresh
	cand.FetchedAt = now

	if err := Validate(cand, p.policy.Trusted); err != nil {
		return nil, err
	}

	// A write failure must not cost the caller a freshly validated result.
	if err := p.store.PutContacts(ctx, key, *cand); err != nil {
		zap.L().Warn("pipeline: cache write failed",
			zap.String("country", country),
			zap.Error(err),
		)
	} else {
		zap.L().Info("pipeline: cached fresh contacts",
			zap.String("country", country),
			zap.Time("fetched_at", now),
		)
	}

	return cand, nil
}

// fallback resolves a failed fresh fetch: last-known cached value if present
// (however stale), else the static default.
func (p *Pipeline) fallback(ctx context.Context, key, country string, cause error) *model.ContactSet {
	zap.L().Warn("pipeline: fresh fetch failed, falling back",
		zap.String("country", country),
		zap.String("stage", failedStage(cause)),
		zap.Error(cause),
	)

	ctx, cancel := context.WithTimeout(ctx, fallbackReadTimeout)
	defer cancel()

	entry, err := p.readCache(ctx, key)
	if err != nil {
		zap.L().Warn("pipeline: fallback cache read failed",
			zap.String("country", country),
			zap.Error(err),
		)
	}
	if entry != nil {
		return cachedSet(entry)
	}

	zap.L().Info("pipeline: returning static default contacts",
		zap.String("country", country),
	)
	return DefaultContacts(country, p.now().UTC())
}

// readCache reads the cache entry for key, tagging store-level failures
// ErrCacheUnavailable so they stay distinguishable from misses.
func (p *Pipeline) readCache(ctx context.Context, key string) (*store.Entry, error) {
	entry, err := p.store.GetContacts(ctx, key)
	if err != nil {
		return nil, eris.Wrapf(ErrCacheUnavailable, "%s: %v", key, err)
	}
	return entry, nil
}

// cachedSet clones a stored entry and tags it OriginCached.
func cachedSet(entry *store.Entry) *model.ContactSet {
	set := entry.Set.Clone()
	set.Origin = model.OriginCached
	if set.FetchedAt.IsZero() {
		set.FetchedAt = entry.FetchedAt
	}
	return set
}

// failedStage names the stage a pipeline error came from, for log attribution.
func failedStage(err error) string {
	switch {
	case err == nil:
		return ""
	case eris.Is(err, ErrSearchFailed):
		return "search"
	case eris.Is(err, ErrExtractionFailed):
		return "extract"
	case eris.Is(err, context.Canceled), eris.Is(err, context.DeadlineExceeded):
		return "deadline"
	default:
		if _, ok := IsValidationError(err); ok {
			return "validate"
		}
		return "unknown"
	}
}
