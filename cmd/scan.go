package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsbattles/versus/internal/matcher"
	"github.com/vsbattles/versus/internal/tier"
)

func newScanCmd(opts *rootOptions) *cobra.Command {
	var stat string

	cmd := &cobra.Command{
		Use:   "scan --stat STAT TEXT...",
		Short: "Show every tier mention found in a piece of text",
		Long: `Scans the text for synonyms of the stat's tiers using longest-match scanning and
prints each match with its byte offsets and the tier it resolves to.`,
		Example: `  versus scan --stat Speed "At least Peak Human, possibly Superhuman"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := opts.loadTiers()
			if err != nil {
				return err
			}
			if !set.HasStat(stat) {
				return fmt.Errorf("%w: %q", tier.ErrUnknownStat, stat)
			}

			text := strings.Join(args, " ")
			m := matcher.New(set.Synonyms(stat))
			out := cmd.OutOrStdout()

			found := 0
			for match := range m.Matches(text) {
				found++
				t, err := set.LookupByName(stat, match.Text)
				if err != nil {
					fmt.Fprintf(out, "%4d-%-4d %q: %v\n", match.Start, match.End, match.Text, err)
					continue
				}
				fmt.Fprintf(out, "%4d-%-4d %q -> %s (rank %d)\n", match.Start, match.End, match.Text, t.Name(), t.Rank)
			}
			if found == 0 {
				fmt.Fprintln(out, "No tier mentioned")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&stat, "stat", "", "Stat whose tiers to look for (required)")
	_ = cmd.MarkFlagRequired("stat")

	return cmd
}
