package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsbattles/versus/internal/battle"
	"github.com/vsbattles/versus/internal/character"
	"github.com/vsbattles/versus/internal/tier"
)

func newTestSet(t *testing.T) *tier.Set {
	t.Helper()
	set, err := tier.Load(&tier.Config{
		StatNames: []string{"Speed", "Intelligence"},
		Stats: map[string]tier.StatConfig{
			"Speed":         {Tiers: []tier.Spec{{"Slow"}, {"Average", "Normal"}, {"Peak Human"}}},
			tier.DefaultKey: {Tiers: []tier.Spec{{"Low"}, {"Mid", "Medium"}, {"High"}}},
		},
	})
	require.NoError(t, err)
	return set
}

func newTestStore(t *testing.T) (*Store, *tier.Set) {
	t.Helper()
	set := newTestSet(t)
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), set)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	now := time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	return store, set
}

func newGoku(t *testing.T, set *tier.Set) *character.Character {
	t.Helper()
	lookup := func(stat, name string) tier.Tier {
		tr, err := set.LookupByName(stat, name)
		require.NoError(t, err)
		return tr
	}

	c := character.NewWithVersions("Goku", []string{"Base", "Super Saiyan"})
	c.Variants[0].Set("Speed", lookup("Speed", "Average"))
	c.Variants[0].Set("Intelligence", lookup("Intelligence", "Medium"))
	c.Variants[1].Set("Intelligence", lookup("Intelligence", "High"))
	c.Variants[1].Set("Speed", lookup("Speed", "Peak Human"))
	return c
}

func TestCharacterRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, set := newTestStore(t)

	saved, err := store.SaveCharacter(ctx, newGoku(t, set))
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	got, err := store.GetCharacter(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "Goku", got.Character.Name)
	assert.Equal(t, []string{"Base", "Super Saiyan"}, got.Character.VersionNames())

	ss, ok := got.Character.Variant("Super Saiyan")
	require.True(t, ok)
	assert.Equal(t, []string{"Intelligence", "Speed"}, ss.StatNames())
	speed, _ := ss.Get("Speed")
	assert.Equal(t, 3, speed.Rank)
	assert.Equal(t, "Goku", ss.Character)

	base, _ := got.Character.Variant("Base")
	intel, _ := base.Get("Intelligence")
	assert.Equal(t, "Mid", intel.Name())
}

func TestListAndDeleteCharacters(t *testing.T) {
	ctx := context.Background()
	store, set := newTestStore(t)

	first, err := store.SaveCharacter(ctx, newGoku(t, set))
	require.NoError(t, err)
	second, err := store.SaveCharacter(ctx, character.NewWithVersions("Vegeta", []string{"Base"}))
	require.NoError(t, err)

	list, err := store.ListCharacters(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	require.NoError(t, store.DeleteCharacter(ctx, first.ID))
	_, err = store.GetCharacter(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err = store.ListCharacters(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Vegeta", list[0].Character.Name)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.GetCharacter(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteCharacter(ctx, "missing"), ErrNotFound)
}

func TestBattles(t *testing.T) {
	ctx := context.Background()
	store, set := newTestStore(t)

	rec, err := store.SaveCharacter(ctx, newGoku(t, set))
	require.NoError(t, err)

	base, _ := rec.Character.Variant("Base")
	ss, _ := rec.Character.Variant("Super Saiyan")
	result := battle.Compare(base, ss)

	saved, err := store.SaveBattle(ctx, rec.ID, rec.ID, result)
	require.NoError(t, err)
	assert.Equal(t, "Goku Super Saiyan", saved.Winner)
	assert.Equal(t, "2 - 0", saved.Score)

	battles, err := store.ListBattles(ctx)
	require.NoError(t, err)
	require.Len(t, battles, 1)
	got := battles[0]
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "Base", got.FirstVersion)
	assert.Equal(t, "Super Saiyan", got.SecondVersion)
	assert.Equal(t, map[string]int{"Speed": 1, "Intelligence": 1}, got.Outcomes)
	assert.Equal(t, 2, got.Verdict)
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	set := newTestSet(t)
	path := filepath.Join(t.TempDir(), "reopen.db")

	s1, err := Open(path, set)
	require.NoError(t, err)
	rec, err := s1.SaveCharacter(ctx, newGoku(t, set))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path, set)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.GetCharacter(ctx, rec.ID)
	require.NoError(t, err)
	assert.Len(t, got.Character.Variants, 2)
}

func TestListsOldestFirstWithinOneSecond(t *testing.T) {
	ctx := context.Background()
	store, set := newTestStore(t)

	times := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 0, 100_000_000, time.UTC),
	}
	next := 0
	store.now = func() time.Time {
		now := times[next%len(times)]
		next++
		return now
	}

	first, err := store.SaveCharacter(ctx, character.New("first"))
	require.NoError(t, err)
	second, err := store.SaveCharacter(ctx, character.New("second"))
	require.NoError(t, err)

	chars, err := store.ListCharacters(ctx)
	require.NoError(t, err)
	require.Len(t, chars, 2)
	assert.Equal(t, []string{first.ID, second.ID}, []string{chars[0].ID, chars[1].ID})

	goku, err := store.SaveCharacter(ctx, newGoku(t, set))
	require.NoError(t, err)
	base, _ := goku.Character.Variant("Base")
	ss, _ := goku.Character.Variant("Super Saiyan")

	next = 0
	b1, err := store.SaveBattle(ctx, goku.ID, goku.ID, battle.Compare(base, ss))
	require.NoError(t, err)
	b2, err := store.SaveBattle(ctx, goku.ID, goku.ID, battle.Compare(ss, base))
	require.NoError(t, err)

	battles, err := store.ListBattles(ctx)
	require.NoError(t, err)
	require.Len(t, battles, 2)
	assert.Equal(t, []string{b1.ID, b2.ID}, []string{battles[0].ID, battles[1].ID})
	assert.True(t, times[0].Equal(battles[0].CreatedAt))
}

func TestMalformedCreatedAt(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.db.Exec(`INSERT INTO characters (id, name, created_at) VALUES ('c1', 'Goku', 'yesterday')`)
	require.NoError(t, err)
	_, err = store.GetCharacter(ctx, "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse created_at")

	_, err = store.db.Exec(`INSERT INTO battles (id, first_character_id, first_version, second_character_id, second_version, created_at)
		VALUES ('b1', 'c1', 'Base', 'c1', 'Base', 'yesterday')`)
	require.NoError(t, err)
	_, err = store.ListBattles(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse created_at")
}
