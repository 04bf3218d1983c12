package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stressease/crisisline/internal/model"
	"github.com/stressease/crisisline/internal/resilience"
)

var (
	fetchForceRefresh bool
	fetchRetries      int
)

// errDegradedResult marks a run that resolved to the static default set, so
// --retries can take another attempt at a live fetch.
var errDegradedResult = eris.New("fetch: degraded result")

var fetchCmd = &cobra.Command{
	Use:   "fetch <country>",
	Short: "Fetch emergency contacts for a country",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		country := args[0]

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		run := func(ctx context.Context) (*model.ContactSet, error) {
			if fetchForceRefresh {
				return env.Pipeline.RefreshContacts(ctx, country)
			}
			return env.Pipeline.GetContacts(ctx, country)
		}

		var set *model.ContactSet
		if fetchRetries > 0 {
			// The pipeline never retries stages itself; --retries re-runs the
			// whole thing when it came back with only the fallback set.
			rcfg := resilience.RetryConfig{
				MaxAttempts:    fetchRetries + 1,
				InitialBackoff: time.Second,
				Operation:      "fetch " + country,
				ShouldRetry: func(err error) bool {
					return eris.Is(err, errDegradedResult)
				},
			}
			err = resilience.Do(ctx, rcfg, func(ctx context.Context) error {
				s, err := run(ctx)
				if err != nil {
					return err
				}
				set = s
				if s.Origin == model.OriginDefault {
					return errDegradedResult
				}
				return nil
			})
			if set == nil && err != nil {
				return err
			}
		} else {
			set, err = run(ctx)
			if err != nil {
				return err
			}
		}

		zap.L().Info("fetch complete",
			zap.String("country", set.Country),
			zap.String("origin", string(set.Origin)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchForceRefresh, "force-refresh", false, "bypass the cache and force a live fetch")
	fetchCmd.Flags().IntVar(&fetchRetries, "retries", 0, "retry a run that resolved to the default fallback set")
	rootCmd.AddCommand(fetchCmd)
}
