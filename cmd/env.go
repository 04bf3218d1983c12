package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/stressease/crisisline/internal/policy"
	"github.com/stressease/crisisline/internal/resilience"
	"github.com/stressease/crisisline/internal/sos"
	"github.com/stressease/crisisline/internal/store"
	"github.com/stressease/crisisline/pkg/anthropic"
	"github.com/stressease/crisisline/pkg/serp"
)

// pipelineEnv bundles the wired pipeline and its store for command lifetimes.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *sos.Pipeline
}

// Close releases resources held by the environment.
func (e *pipelineEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initPipeline builds the full pipeline from configuration.
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	pol := policy.Default()
	if cfg.Policy.File != "" {
		p, err := policy.Load(cfg.Policy.File)
		if err != nil {
			return nil, err
		}
		pol = p
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	serpOpts := []serp.Option{
		serp.WithNum(cfg.Serp.Num),
		serp.WithLanguage(cfg.Serp.Language),
	}
	if cfg.Serp.BaseURL != "" {
		serpOpts = append(serpOpts, serp.WithBaseURL(cfg.Serp.BaseURL))
	}
	serpClient := serp.NewClient(cfg.Serp.Key, serpOpts...)
	aiClient := anthropic.NewClient(cfg.Anthropic.Key)

	searcher := sos.NewSearcher(serpClient, pol,
		cfg.Search.RatePerSec,
		time.Duration(cfg.Search.TimeoutSecs)*time.Second,
	)
	extractor := sos.NewExtractor(aiClient,
		cfg.Anthropic.Model,
		cfg.Anthropic.MaxTokens,
		time.Duration(cfg.Extract.TimeoutSecs)*time.Second,
	)

	pipe := sos.NewPipeline(st, searcher, extractor, pol,
		time.Duration(cfg.Cache.TTLDays)*24*time.Hour,
		time.Duration(cfg.Pipeline.OverallTimeoutSecs)*time.Second,
	)

	return &pipelineEnv{Store: st, Pipeline: pipe}, nil
}

// openStore opens the configured cache store, retrying transient connection
// failures (e.g. the database still coming up).
func openStore(ctx context.Context) (store.Store, error) {
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.Operation = "store: open " + cfg.Store.Driver

	switch cfg.Store.Driver {
	case "sqlite", "":
		return resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (store.Store, error) {
			return store.NewSQLite(cfg.Store.DSN)
		})
	case "postgres":
		return resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (store.Store, error) {
			return store.NewPostgres(ctx, cfg.Store.DSN)
		})
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
