package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsbattles/versus/internal/battle"
	"github.com/vsbattles/versus/internal/character"
	"github.com/vsbattles/versus/internal/results"
	"github.com/vsbattles/versus/internal/roster"
	"github.com/vsbattles/versus/internal/tier"
)

func newBattleCmd(opts *rootOptions) *cobra.Command {
	var firstPath, firstVersion string
	var secondPath, secondVersion string
	var yamlDir string

	cmd := &cobra.Command{
		Use:   "battle",
		Short: "Compare two character versions stat by stat",
		Long: `Loads two characters written by "versus extract" (CSV or Parquet), picks one
version of each and compares them on every stat both rate. The higher tier wins
the stat; the side that wins more stats wins the battle.`,
		Example: `  versus battle --first out/Goku.csv --first-version Base \
    --second out/Vegeta.csv --second-version "Super Saiyan"

  # Also save a YAML battle report
  versus battle --first out/Goku.csv --first-version Base \
    --second out/Goku.csv --second-version Kaioken --yaml battles`,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := opts.loadTiers()
			if err != nil {
				return err
			}

			first, err := loadVariant(firstPath, firstVersion, set)
			if err != nil {
				return err
			}
			second, err := loadVariant(secondPath, secondVersion, set)
			if err != nil {
				return err
			}

			result := battle.Compare(first, second)
			fmt.Fprint(cmd.OutOrStdout(), result)
			if len(result.Skipped) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Not compared: %s\n", strings.Join(result.Skipped, ", "))
			}

			if yamlDir != "" {
				path, err := results.SaveToYAML(yamlDir, opts.configPath, time.Now(), result)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report saved to: %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&firstPath, "first", "", "First character file (.csv or .parquet)")
	cmd.Flags().StringVar(&firstVersion, "first-version", "", "Version of the first character")
	cmd.Flags().StringVar(&secondPath, "second", "", "Second character file (.csv or .parquet)")
	cmd.Flags().StringVar(&secondVersion, "second-version", "", "Version of the second character")
	cmd.Flags().StringVar(&yamlDir, "yaml", "", "Directory to write a YAML battle report to")
	for _, f := range []string{"first", "first-version", "second", "second-version"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func loadCharacter(path string, set *tier.Set) (*character.Character, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return roster.LoadCSV(path, roster.CharacterNameFromPath(path), set)
	case ".parquet":
		chars, err := roster.LoadParquet(path, set)
		if err != nil {
			return nil, err
		}
		if len(chars) == 0 {
			return nil, fmt.Errorf("%s: no characters", path)
		}
		return chars[0], nil
	default:
		return nil, fmt.Errorf("unsupported character file %s: expected .csv or .parquet", path)
	}
}

func loadVariant(path, version string, set *tier.Set) (*character.Variant, error) {
	c, err := loadCharacter(path, set)
	if err != nil {
		return nil, err
	}
	v, ok := c.Variant(version)
	if !ok {
		if hint := tier.Closest(version, c.VersionNames()); hint != "" {
			return nil, fmt.Errorf("%s has no version %q (did you mean %q?)", c.Name, version, hint)
		}
		return nil, fmt.Errorf("%s has no version %q (have: %s)", c.Name, version, strings.Join(c.VersionNames(), ", "))
	}
	return v, nil
}
