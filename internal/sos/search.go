package sos

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/stressease/crisisline/internal/model"
	"github.com/stressease/crisisline/internal/policy"
	"github.com/stressease/crisisline/pkg/serp"
)

// SearchStage gathers raw web evidence for a country.
type SearchStage interface {
	Search(ctx context.Context, country string, year int) ([]model.Snippet, error)
}

// Searcher implements SearchStage on top of a SerpAPI client. It issues the
// fixed query set from the policy; the same country and year always produce
// the same queries.
type Searcher struct {
	client  serp.Client
	policy  *policy.Policy
	limiter *rate.Limiter
	timeout time.Duration
}

// NewSearcher creates a Searcher. ratePerSec bounds outbound query rate
// across concurrent pipeline runs; timeout bounds the whole stage.
func NewSearcher(client serp.Client, pol *policy.Policy, ratePerSec float64, timeout time.Duration) *Searcher {
	if ratePerSec <= 0 {
		ratePerSec = 2
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Searcher{
		client:  client,
		policy:  pol,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), policy.QueryCount),
		timeout: timeout,
	}
}

// Search runs the query set concurrently and returns the combined snippets.
// A query that errors or comes back empty is tolerated as long as at least
// one query yields content; total failure is ErrSearchFailed. Result order
// across queries is not meaningful — extraction treats the snippets as an
// unordered evidence bag.
func (s *Searcher) Search(ctx context.Context, country string, year int) ([]model.Snippet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	queries := s.policy.Queries(country, year)
	perQuery := make([][]model.Snippet, len(queries))

	var mu sync.Mutex
	var failures int

	g := new(errgroup.Group)
	for i, q := range queries {
		g.Go(func() error {
			if err := s.limiter.Wait(ctx); err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
				return nil
			}

			resp, err := s.client.Search(ctx, q)
			if err != nil {
				zap.L().Warn("search: query failed",
					zap.String("country", country),
					zap.String("query", q),
					zap.Error(err),
				)
				mu.Lock()
				failures++
				mu.Unlock()
				return nil
			}

			snippets := make([]model.Snippet, 0, len(resp.OrganicResults))
			for _, r := range resp.OrganicResults {
				if r.Snippet == "" && r.Title == "" {
					continue
				}
				snippets = append(snippets, model.Snippet{
					Title:     r.Title,
					Text:      r.Snippet,
					SourceURL: r.Link,
				})
			}
			perQuery[i] = snippets
			return nil
		})
	}
	_ = g.Wait()

	var combined []model.Snippet
	for _, part := range perQuery {
		combined = append(combined, part...)
	}

	if len(combined) == 0 {
		return nil, eris.Wrapf(ErrSearchFailed, "search: no usable results for %q (%d/%d queries failed)",
			country, failures, len(queries))
	}

	zap.L().Debug("search: collected snippets",
		zap.String("country", country),
		zap.Int("snippets", len(combined)),
		zap.Int("failed_queries", failures),
	)
	return combined, nil
}
