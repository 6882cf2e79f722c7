// Package roster reads and writes characters in tabular form: a legend row naming the
// stats and one row per variant holding each stat's canonical tier name.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vsbattles/versus/internal/character"
	"github.com/vsbattles/versus/internal/tier"
)

// VersionColumn heads the first column of the legend row.
const VersionColumn = "Character Version"

// FileName returns the default CSV file name for a character: trimmed, spaces replaced
// by dashes.
func FileName(characterName string) string {
	return strings.ReplaceAll(strings.TrimSpace(characterName), " ", "-") + ".csv"
}

// WriteCSV writes c as a legend row plus one row per variant. A stat a variant does not
// rate is written as an empty cell.
func WriteCSV(w io.Writer, c *character.Character) error {
	writer := csv.NewWriter(w)

	stats := c.StatNames()
	legend := append([]string{VersionColumn}, stats...)
	if err := writer.Write(legend); err != nil {
		return fmt.Errorf("failed to write legend: %w", err)
	}

	for _, v := range c.Variants {
		row := make([]string, 0, len(legend))
		row = append(row, v.Name)
		for _, stat := range stats {
			t, ok := v.Get(stat)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, t.Name())
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write variant %q: %w", v.Name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSV reads a character written by WriteCSV, resolving every cell through set.
func ReadCSV(r io.Reader, characterName string, set *tier.Set) (*character.Character, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	legend, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("missing legend row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read legend: %w", err)
	}
	if len(legend) == 0 || legend[0] != VersionColumn {
		return nil, fmt.Errorf("legend must start with %q", VersionColumn)
	}
	stats := legend[1:]
	seen := make(map[string]bool, len(stats))
	for _, stat := range stats {
		if !set.HasStat(stat) {
			return nil, fmt.Errorf("%w: %q in legend", tier.ErrUnknownStat, stat)
		}
		if seen[stat] {
			return nil, fmt.Errorf("stat %q appears twice in legend", stat)
		}
		seen[stat] = true
	}

	c := character.New(characterName)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}
		if len(row) > len(legend) {
			return nil, fmt.Errorf("row %d has %d cells, legend has %d", line, len(row), len(legend))
		}

		v := character.NewVariant(characterName, row[0])
		for i, cell := range row[1:] {
			if cell == "" {
				continue
			}
			t, err := set.LookupByName(stats[i], cell)
			if err != nil {
				if hint := set.Suggest(stats[i], cell); hint != "" {
					return nil, fmt.Errorf("row %d: %w (did you mean %q?)", line, err, hint)
				}
				return nil, fmt.Errorf("row %d: %w", line, err)
			}
			v.Set(stats[i], t)
		}
		c.Add(v)
	}

	return c, nil
}

// SaveCSV writes c to path, creating parent directories.
func SaveCSV(path string, c *character.Character) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := WriteCSV(file, c); err != nil {
		return err
	}

	slog.Debug("Wrote character CSV", "path", path, "character", c.Name, "variants", len(c.Variants))
	return file.Close()
}

// LoadCSV reads the character stored at path.
func LoadCSV(path, characterName string, set *tier.Set) (*character.Character, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open character file: %w", err)
	}
	defer file.Close()

	c, err := ReadCSV(file, characterName, set)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// CharacterNameFromPath recovers a character name from a default file name.
func CharacterNameFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.ReplaceAll(base, "-", " ")
}
