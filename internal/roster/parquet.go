package roster

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/vsbattles/versus/internal/character"
	"github.com/vsbattles/versus/internal/tier"
)

// Row is one rated stat of one variant in the long (one row per stat) export format.
type Row struct {
	Character string `parquet:"character"`
	Version   string `parquet:"version"`
	Position  int32  `parquet:"position"`
	Stat      string `parquet:"stat"`
	Tier      string `parquet:"tier"`
	Rank      int32  `parquet:"rank"`
}

// Rows flattens characters into export rows. Position is the variant's index within
// its character, so variant order survives a round trip. A variant without any rated
// stat produces no rows.
func Rows(chars ...*character.Character) []Row {
	var rows []Row
	for _, c := range chars {
		for pos, v := range c.Variants {
			for _, sv := range v.Values() {
				rows = append(rows, Row{
					Character: c.Name,
					Version:   v.Name,
					Position:  int32(pos),
					Stat:      sv.Stat,
					Tier:      sv.Tier,
					Rank:      int32(sv.Rank),
				})
			}
		}
	}
	return rows
}

// SaveParquet writes chars to a Parquet file at path.
func SaveParquet(path string, chars ...*character.Character) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	rows := Rows(chars...)
	writer := parquet.NewGenericWriter[Row](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}

	slog.Debug("Wrote parquet export", "path", path, "characters", len(chars), "rows", len(rows))
	return file.Close()
}

// LoadParquet reads characters written by SaveParquet, resolving tiers through set by
// name. Characters come back in first-seen order.
func LoadParquet(path string, set *tier.Set) ([]*character.Character, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	var rows []Row
	batch := make([]Row, 128)
	for {
		n, err := reader.Read(batch)
		rows = append(rows, batch[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Read parquet export", "path", path, "rows", len(rows))
	return FromRows(rows, set)
}

// FromRows regroups export rows into characters.
func FromRows(rows []Row, set *tier.Set) ([]*character.Character, error) {
	var chars []*character.Character
	byName := make(map[string]*character.Character)
	variants := make(map[string]map[int32]*character.Variant)

	for _, row := range rows {
		c, ok := byName[row.Character]
		if !ok {
			c = character.New(row.Character)
			byName[row.Character] = c
			variants[row.Character] = make(map[int32]*character.Variant)
			chars = append(chars, c)
		}

		v, ok := variants[row.Character][row.Position]
		if !ok {
			v = character.NewVariant(row.Character, row.Version)
			variants[row.Character][row.Position] = v
		}

		t, err := set.LookupByName(row.Stat, row.Tier)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", row.Character, row.Version, err)
		}
		if int32(t.Rank) != row.Rank {
			slog.Warn("Stored rank differs from configured rank", "stat", row.Stat, "tier", row.Tier, "stored", row.Rank, "configured", t.Rank)
		}
		v.Set(row.Stat, t)
	}

	for _, c := range chars {
		positions := variants[c.Name]
		for pos := int32(0); len(c.Variants) < len(positions); pos++ {
			if v, ok := positions[pos]; ok {
				c.Add(v)
			}
		}
	}
	return chars, nil
}
