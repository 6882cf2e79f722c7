package tier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupByNameEverySynonym(t *testing.T) {
	set := mustLoad(t, speedJSON)

	for _, stat := range set.StatNames() {
		for _, tr := range set.Tiers(stat) {
			for _, syn := range tr.Synonyms {
				got, err := set.LookupByName(stat, syn)
				require.NoError(t, err, "%s/%s", stat, syn)
				assert.True(t, got.Equal(tr))
				assert.True(t, got.MatchesSynonym(syn))
			}
		}
	}
}

func TestLookupByNameIsExact(t *testing.T) {
	set := mustLoad(t, speedJSON)

	for _, text := range []string{"slow", "Peak", "Peak Human ", " Average", ""} {
		_, err := set.LookupByName("Speed", text)
		assert.ErrorIs(t, err, ErrTierNotFound, "text %q", text)
	}
}

func TestLookupUnknownStat(t *testing.T) {
	set := mustLoad(t, speedJSON)

	_, err := set.LookupByName("Strength", "Slow")
	assert.ErrorIs(t, err, ErrUnknownStat)

	// The default key is not a stat of its own unless listed.
	_, err = set.LookupByName(DefaultKey, "Low")
	assert.ErrorIs(t, err, ErrUnknownStat)

	_, err = set.LookupByRank("Strength", 1)
	assert.ErrorIs(t, err, ErrUnknownStat)

	assert.Empty(t, set.Tiers("Strength"))
	assert.False(t, set.HasStat("Strength"))
}

func TestLookupByRank(t *testing.T) {
	set := mustLoad(t, speedJSON)

	tests := []struct {
		rank    int
		want    string
		wantErr error
	}{
		{rank: 1, want: "Slow"},
		{rank: 2, want: "Average"},
		{rank: 3, want: "Peak Human"},
		{rank: 0, wantErr: ErrTierNotFound},
		{rank: 4, wantErr: ErrTierNotFound},
	}

	for _, tt := range tests {
		got, err := set.LookupByRank("Speed", tt.rank)
		if tt.wantErr != nil {
			assert.True(t, errors.Is(err, tt.wantErr), "rank %d: %v", tt.rank, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Name())
		assert.Equal(t, tt.rank, got.Rank)
	}
}

func TestTierEqualityAndSynonyms(t *testing.T) {
	a := Tier{Stat: "Speed", Rank: 2, Synonyms: []string{"Average", "Normal"}}
	b := Tier{Stat: "Speed", Rank: 2, Synonyms: []string{"Other"}}
	c := Tier{Stat: "Intelligence", Rank: 2, Synonyms: []string{"Average"}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, a.MatchesSynonym("Normal"))
	assert.False(t, a.MatchesSynonym("normal"))
	assert.Equal(t, "Tier(stat: Speed, tier: Average, rank: 2)", a.String())
}

func TestStatNamesKeepsConfigOrder(t *testing.T) {
	set := mustLoad(t, speedJSON)

	names := set.StatNames()
	assert.Equal(t, []string{"Speed", "Intelligence", "Durability"}, names)
	names[0] = "Mutated"
	assert.Equal(t, "Speed", set.StatNames()[0])
}

func TestSuggest(t *testing.T) {
	set := mustLoad(t, speedJSON)

	assert.Equal(t, "Peak Human", set.Suggest("Speed", "Peak Humen"))
	assert.Equal(t, "", set.Suggest("Speed", "zzzz"))
	assert.Equal(t, "", set.Suggest("Strength", "Peak Human"))
}
