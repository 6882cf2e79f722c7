package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsbattles/versus/internal/character"
	"github.com/vsbattles/versus/internal/extract"
	"github.com/vsbattles/versus/internal/roster"
	"github.com/vsbattles/versus/internal/storage"
)

func newExtractCmd(opts *rootOptions) *cobra.Command {
	var sheetPath string
	var name string
	var format string
	var outDir string
	var save bool
	var dbPath string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract tier values from a character stat sheet",
		Long: `Parses a plain-text stat sheet, assigns a tier of every configured stat to each
character version listed on its Key line and writes the result as CSV or Parquet.

A stat sheet looks like:

  Key: Base | Super Saiyan
  Speed: Peak Human | Superhuman
  Intelligence: Average`,
		Example: `  # Extract Goku and write out/Goku.csv
  versus extract --sheet sheets/goku.txt --name Goku

  # Write Parquet and store the character in the database
  versus extract --sheet sheets/goku.txt --name Goku --format parquet --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flagFromEnv(cmd, "out", "VERSUS_OUTPUT_DIR", &outDir)
			flagFromEnv(cmd, "db", "VERSUS_DB", &dbPath)
			if format != "csv" && format != "parquet" {
				return fmt.Errorf("invalid format %q: must be csv or parquet", format)
			}

			set, err := opts.loadTiers()
			if err != nil {
				return err
			}

			file, err := os.Open(sheetPath)
			if err != nil {
				return fmt.Errorf("failed to open stat sheet: %w", err)
			}
			defer file.Close()

			sheet, err := extract.ParseSheet(file, set.StatNames())
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", sheetPath, err)
			}
			if len(sheet.Versions) == 0 {
				return fmt.Errorf("%s: Key line lists no versions", sheetPath)
			}
			if name == "" {
				name = roster.CharacterNameFromPath(sheetPath)
			}

			c := character.NewWithVersions(name, sheet.Versions)
			report, err := extract.New(set).Populate(c, sheet.Blocks)
			if err != nil {
				return fmt.Errorf("failed to extract tiers: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, c)
			if issues := report.Issues(); len(issues) > 0 {
				fmt.Fprintf(out, "\n%d issue(s):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %v\n", issue)
				}
			}

			path := filepath.Join(outDir, roster.FileName(c.Name))
			if format == "parquet" {
				path = strings.TrimSuffix(path, ".csv") + ".parquet"
				err = roster.SaveParquet(path, c)
			} else {
				err = roster.SaveCSV(path, c)
			}
			if err != nil {
				return err
			}
			slog.Info("Character written", "path", path, "variants", len(c.Variants), "stats", len(report.Assigned()))

			if save {
				store, err := storage.Open(dbPath, set)
				if err != nil {
					return err
				}
				defer store.Close()

				rec, err := store.SaveCharacter(cmd.Context(), c)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\nStored as %s\n", rec.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sheetPath, "sheet", "", "Path to the stat sheet text file (required)")
	cmd.Flags().StringVar(&name, "name", "", "Character name (defaults to the sheet file name)")
	cmd.Flags().StringVar(&format, "format", "csv", "Output format (csv or parquet)")
	cmd.Flags().StringVar(&outDir, "out", defaultOutputDir, "Output directory")
	cmd.Flags().BoolVar(&save, "save", false, "Also store the character in the database")
	cmd.Flags().StringVar(&dbPath, "db", defaultDB, "SQLite database path used with --save")
	_ = cmd.MarkFlagRequired("sheet")

	return cmd
}
