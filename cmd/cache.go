package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stressease/crisisline/internal/sos"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the contact cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached countries with freshness",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		entries, err := env.Store.ListCountries(ctx)
		if err != nil {
			return err
		}

		ttl := time.Duration(cfg.Cache.TTLDays) * 24 * time.Hour
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "COUNTRY\tFETCHED\tAGE\tSTATUS")
		for _, e := range entries {
			age := time.Since(e.FetchedAt).Round(time.Hour)
			status := "fresh"
			if age >= ttl {
				status = "stale"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.Country, e.FetchedAt.Format(time.RFC3339), age, status)
		}
		return w.Flush()
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <country>",
	Short: "Show the cached contact set for a country",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		entry, err := env.Store.GetContacts(ctx, sos.NormalizeCountry(args[0]))
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("no cache entry for %q", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd, cacheShowCmd)
	rootCmd.AddCommand(cacheCmd)
}
