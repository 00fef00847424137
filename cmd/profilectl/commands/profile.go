package commands

import (
	"github.com/spf13/cobra"
)

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name|address>",
		Short: "Resolve an ENS name or address to its identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := appCtx.Profiles.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), id)
		},
	}
}

func profileCmd() *cobra.Command {
	var (
		refresh bool
		summary bool
	)
	cmd := &cobra.Command{
		Use:   "profile <name|address>",
		Short: "Aggregate every profile section for an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			get := appCtx.Profiles.Aggregate
			if refresh {
				get = appCtx.Profiles.Refresh
			}
			p, err := get(ctx, args[0])
			if err != nil {
				return err
			}
			if !summary {
				return printJSON(cmd.OutOrStdout(), p)
			}
			s, err := appCtx.Summaries.Summarize(ctx, p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "drop cached sections before fetching")
	cmd.Flags().BoolVar(&summary, "summary", false, "print the generated summary instead of the profile")
	return cmd
}
