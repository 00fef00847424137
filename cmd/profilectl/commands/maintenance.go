package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vytor/web3profile/internal/cache"
)

func searchesCmd() *cobra.Command {
	var (
		limit   int
		popular bool
	)
	cmd := &cobra.Command{
		Use:   "searches",
		Short: "List recent or popular searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := appCtx.Searches.Recent
			if popular {
				list = appCtx.Searches.Popular
			}
			entries, err := list(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	cmd.Flags().BoolVar(&popular, "popular", false, "order by hit count instead of recency")
	return cmd
}

func purgeCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-cache",
		Short: "Delete expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := appCtx.Cache.(cache.Purger)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "cache backend expires entries on its own, nothing to purge")
				return nil
			}
			n, err := p.Purge(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired entries\n", n)
			return nil
		},
	}
}
