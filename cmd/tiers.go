package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsbattles/versus/internal/tier"
)

func newTiersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tiers [stat]",
		Short: "List configured stats and their tiers",
		Example: `  # List every stat
  versus tiers

  # Show the tiers of one stat
  versus tiers Speed`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := opts.loadTiers()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, stat := range set.StatNames() {
					fmt.Fprintf(out, "%s (%d tiers)\n", stat, len(set.Tiers(stat)))
				}
				return nil
			}

			stat := args[0]
			if !set.HasStat(stat) {
				if hint := tier.Closest(stat, set.StatNames()); hint != "" {
					return fmt.Errorf("%w: %q (did you mean %q?)", tier.ErrUnknownStat, stat, hint)
				}
				return fmt.Errorf("%w: %q", tier.ErrUnknownStat, stat)
			}
			for _, t := range set.Tiers(stat) {
				fmt.Fprintf(out, "%3d  %s\n", t.Rank, strings.Join(t.Synonyms, " / "))
			}
			return nil
		},
	}
}
