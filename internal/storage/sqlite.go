// Package storage persists characters and battles in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/vsbattles/versus/internal/battle"
	"github.com/vsbattles/versus/internal/character"
	"github.com/vsbattles/versus/internal/tier"
)

var ErrNotFound = errors.New("not found")

// timeLayout is fixed width so created_at text sorts in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS characters (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS variants (
	character_id TEXT NOT NULL,
	position     INTEGER NOT NULL,
	name         TEXT NOT NULL,
	PRIMARY KEY (character_id, position)
);

CREATE TABLE IF NOT EXISTS variant_stats (
	character_id TEXT NOT NULL,
	position     INTEGER NOT NULL,
	stat_order   INTEGER NOT NULL,
	stat         TEXT NOT NULL,
	tier         TEXT NOT NULL,
	PRIMARY KEY (character_id, position, stat_order)
);

CREATE TABLE IF NOT EXISTS battles (
	id                  TEXT PRIMARY KEY,
	first_character_id  TEXT NOT NULL,
	first_version       TEXT NOT NULL,
	second_character_id TEXT NOT NULL,
	second_version      TEXT NOT NULL,
	outcomes            TEXT NOT NULL DEFAULT '{}',
	verdict             INTEGER NOT NULL DEFAULT 0,
	winner              TEXT NOT NULL DEFAULT '',
	score               TEXT NOT NULL DEFAULT '',
	created_at          TEXT NOT NULL
);
`

// Store reads and writes characters and battles. Tier values are stored by canonical name
// and resolved through the tier set on read.
type Store struct {
	db    *sqlx.DB
	tiers *tier.Set
	now   func() time.Time
}

// CharacterRecord is a stored character.
type CharacterRecord struct {
	ID        string               `json:"id"`
	Character *character.Character `json:"character"`
	CreatedAt time.Time            `json:"created_at"`
}

// BattleRecord is a stored battle.
type BattleRecord struct {
	ID                string         `json:"id"`
	FirstCharacterID  string         `json:"first_character_id"`
	FirstVersion      string         `json:"first_version"`
	SecondCharacterID string         `json:"second_character_id"`
	SecondVersion     string         `json:"second_version"`
	Outcomes          map[string]int `json:"outcomes"`
	Verdict           int            `json:"verdict"`
	Winner            string         `json:"winner"`
	Score             string         `json:"score"`
	CreatedAt         time.Time      `json:"created_at"`
}

type characterRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
}

type variantRow struct {
	Position int    `db:"position"`
	Name     string `db:"name"`
}

type statRow struct {
	Position int    `db:"position"`
	Stat     string `db:"stat"`
	Tier     string `db:"tier"`
}

type battleRow struct {
	ID                string `db:"id"`
	FirstCharacterID  string `db:"first_character_id"`
	FirstVersion      string `db:"first_version"`
	SecondCharacterID string `db:"second_character_id"`
	SecondVersion     string `db:"second_version"`
	Outcomes          string `db:"outcomes"`
	Verdict           int    `db:"verdict"`
	Winner            string `db:"winner"`
	Score             string `db:"score"`
	CreatedAt         string `db:"created_at"`
}

// Open opens (creating if needed) the database at path.
func Open(path string, set *tier.Set) (*Store, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	slog.Debug("Opened database", "path", path)
	return &Store{db: db, tiers: set, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCharacter stores c under a new ID.
func (s *Store) SaveCharacter(ctx context.Context, c *character.Character) (*CharacterRecord, error) {
	rec := &CharacterRecord{
		ID:        uuid.NewString(),
		Character: c,
		CreatedAt: s.now().UTC(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO characters (id, name, created_at) VALUES (?, ?, ?)`,
		rec.ID, c.Name, rec.CreatedAt.Format(timeLayout)); err != nil {
		return nil, fmt.Errorf("failed to insert character: %w", err)
	}
	for pos, v := range c.Variants {
		if _, err := tx.ExecContext(ctx, `INSERT INTO variants (character_id, position, name) VALUES (?, ?, ?)`,
			rec.ID, pos, v.Name); err != nil {
			return nil, fmt.Errorf("failed to insert variant %q: %w", v.Name, err)
		}
		for i, sv := range v.Values() {
			if _, err := tx.ExecContext(ctx, `INSERT INTO variant_stats (character_id, position, stat_order, stat, tier) VALUES (?, ?, ?, ?, ?)`,
				rec.ID, pos, i, sv.Stat, sv.Tier); err != nil {
				return nil, fmt.Errorf("failed to insert stat %q: %w", sv.Stat, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit character: %w", err)
	}

	slog.Info("Stored character", "id", rec.ID, "name", c.Name, "variants", len(c.Variants))
	return rec, nil
}

// GetCharacter loads the character stored under id.
func (s *Store) GetCharacter(ctx context.Context, id string) (*CharacterRecord, error) {
	var row characterRow
	err := s.db.GetContext(ctx, &row, `SELECT id, name, created_at FROM characters WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("character %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query character: %w", err)
	}
	return s.loadCharacter(ctx, row)
}

// ListCharacters returns every stored character, oldest first.
func (s *Store) ListCharacters(ctx context.Context) ([]*CharacterRecord, error) {
	var rows []characterRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name, created_at FROM characters ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	records := make([]*CharacterRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := s.loadCharacter(ctx, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) loadCharacter(ctx context.Context, row characterRow) (*CharacterRecord, error) {
	var variants []variantRow
	if err := s.db.SelectContext(ctx, &variants,
		`SELECT position, name FROM variants WHERE character_id = ? ORDER BY position`, row.ID); err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	var stats []statRow
	if err := s.db.SelectContext(ctx, &stats,
		`SELECT position, stat, tier FROM variant_stats WHERE character_id = ? ORDER BY position, stat_order`, row.ID); err != nil {
		return nil, fmt.Errorf("failed to query variant stats: %w", err)
	}

	c := character.New(row.Name)
	byPosition := make(map[int]*character.Variant, len(variants))
	for _, vr := range variants {
		v := character.NewVariant(row.Name, vr.Name)
		byPosition[vr.Position] = v
		c.Add(v)
	}
	for _, sr := range stats {
		v, ok := byPosition[sr.Position]
		if !ok {
			slog.Warn("Stat row without variant", "character", row.ID, "position", sr.Position)
			continue
		}
		t, err := s.tiers.LookupByName(sr.Stat, sr.Tier)
		if err != nil {
			return nil, fmt.Errorf("character %s variant %q: %w", row.ID, v.Name, err)
		}
		v.Set(sr.Stat, t)
	}

	createdAt, err := time.Parse(timeLayout, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("character %s: failed to parse created_at: %w", row.ID, err)
	}
	return &CharacterRecord{ID: row.ID, Character: c, CreatedAt: createdAt}, nil
}

// DeleteCharacter removes the character stored under id along with its variants.
func (s *Store) DeleteCharacter(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("character %s: %w", id, ErrNotFound)
	}
	for _, table := range []string{"variants", "variant_stats"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE character_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	slog.Info("Deleted character", "id", id)
	return nil
}

// SaveBattle stores r, fought between variants of the two stored characters.
func (s *Store) SaveBattle(ctx context.Context, firstID, secondID string, r *battle.Result) (*BattleRecord, error) {
	rec := &BattleRecord{
		ID:                uuid.NewString(),
		FirstCharacterID:  firstID,
		FirstVersion:      r.First.Name,
		SecondCharacterID: secondID,
		SecondVersion:     r.Second.Name,
		Outcomes:          make(map[string]int, len(r.Outcomes)),
		Verdict:           r.Verdict,
		Score:             r.Score(),
		CreatedAt:         s.now().UTC(),
	}
	for stat, o := range r.Outcomes {
		rec.Outcomes[stat] = int(o)
	}
	if w := r.Winner(); w != nil {
		rec.Winner = w.Label()
	}

	outcomes, err := json.Marshal(rec.Outcomes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outcomes: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO battles (id, first_character_id, first_version, second_character_id, second_version, outcomes, verdict, winner, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.FirstCharacterID, rec.FirstVersion, rec.SecondCharacterID, rec.SecondVersion,
		string(outcomes), rec.Verdict, rec.Winner, rec.Score, rec.CreatedAt.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to insert battle: %w", err)
	}

	slog.Info("Stored battle", "id", rec.ID, "first", r.First.Label(), "second", r.Second.Label(), "verdict", rec.Verdict)
	return rec, nil
}

// ListBattles returns every stored battle, oldest first.
func (s *Store) ListBattles(ctx context.Context) ([]*BattleRecord, error) {
	var rows []battleRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM battles ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("failed to list battles: %w", err)
	}

	records := make([]*BattleRecord, 0, len(rows))
	for _, row := range rows {
		rec := &BattleRecord{
			ID:                row.ID,
			FirstCharacterID:  row.FirstCharacterID,
			FirstVersion:      row.FirstVersion,
			SecondCharacterID: row.SecondCharacterID,
			SecondVersion:     row.SecondVersion,
			Verdict:           row.Verdict,
			Winner:            row.Winner,
			Score:             row.Score,
		}
		if err := json.Unmarshal([]byte(row.Outcomes), &rec.Outcomes); err != nil {
			return nil, fmt.Errorf("battle %s: failed to parse outcomes: %w", row.ID, err)
		}
		createdAt, err := time.Parse(timeLayout, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("battle %s: failed to parse created_at: %w", row.ID, err)
		}
		rec.CreatedAt = createdAt
		records = append(records, rec)
	}
	return records, nil
}
