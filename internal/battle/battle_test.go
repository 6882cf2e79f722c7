package battle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vsbattles/versus/internal/character"
	"github.com/vsbattles/versus/internal/tier"
)

func variant(name string, ranks map[string]int, order ...string) *character.Variant {
	v := character.NewVariant("Goku", name)
	for _, stat := range order {
		rank := ranks[stat]
		v.Set(stat, tier.Tier{Stat: stat, Rank: rank, Synonyms: []string{fmt.Sprintf("T%d", rank)}})
	}
	return v
}

func TestCompareScenario(t *testing.T) {
	base := variant("Base", map[string]int{"Speed": 3}, "Speed")
	kaioken := variant("Kaioken", map[string]int{"Speed": 2}, "Speed")

	r := Compare(base, kaioken)
	assert.Equal(t, FirstWins, r.Outcomes["Speed"])
	assert.Equal(t, -1, r.Verdict)
	assert.Same(t, base, r.Winner())
}

func TestCompareAggregates(t *testing.T) {
	a := variant("A", map[string]int{"Speed": 3, "Intelligence": 1, "Range": 2, "Stamina": 4}, "Speed", "Intelligence", "Range", "Stamina")
	b := variant("B", map[string]int{"Speed": 1, "Intelligence": 2, "Range": 2, "Durability": 1}, "Speed", "Intelligence", "Range", "Durability")

	r := Compare(a, b)

	assert.Equal(t, map[string]Outcome{"Speed": FirstWins, "Intelligence": SecondWins, "Range": Tie}, r.Outcomes)
	assert.Equal(t, []string{"Speed", "Intelligence", "Range"}, r.Stats)
	assert.Equal(t, []string{"Stamina", "Durability"}, r.Skipped)
	assert.Equal(t, 0, r.Verdict)
	assert.Nil(t, r.Winner())

	first, second := r.Wins()
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, "1 - 1", r.Score())
}

func TestScoreOrdersMaxFirst(t *testing.T) {
	a := variant("A", map[string]int{"S1": 1, "S2": 1, "S3": 3}, "S1", "S2", "S3")
	b := variant("B", map[string]int{"S1": 2, "S2": 2, "S3": 1}, "S1", "S2", "S3")

	r := Compare(a, b)
	assert.Equal(t, 1, r.Verdict)
	assert.Equal(t, "2 - 1", r.Score())
	assert.Same(t, b, r.Winner())
}

func TestResultString(t *testing.T) {
	a := variant("Base", map[string]int{"Speed": 3, "Range": 1}, "Speed", "Range")
	b := variant("Kaioken", map[string]int{"Speed": 2, "Range": 1}, "Speed", "Range")

	out := Compare(a, b).String()
	assert.Contains(t, out, "Goku Base vs. Goku Kaioken!")
	assert.Contains(t, out, "Speed: Goku Base\n")
	assert.Contains(t, out, "Range: Tie!\n")
	assert.Contains(t, out, "Goku Base wins 1 - 0!")
}

func TestCompareEmpty(t *testing.T) {
	r := Compare(character.NewVariant("A", "x"), character.NewVariant("B", "y"))
	require.Empty(t, r.Outcomes)
	assert.Equal(t, 0, r.Verdict)
	assert.Equal(t, "0 - 0", r.Score())
}

func TestCompareSymmetry(t *testing.T) {
	stats := []string{"Speed", "Intelligence", "Range", "Durability"}

	rapid.Check(t, func(t *rapid.T) {
		draw := func(label string) *character.Variant {
			ranks := make(map[string]int)
			var order []string
			for _, stat := range stats {
				if rapid.Bool().Draw(t, label+"-has-"+stat) {
					ranks[stat] = rapid.IntRange(1, 6).Draw(t, label+"-"+stat)
					order = append(order, stat)
				}
			}
			return variant(label, ranks, order...)
		}
		a, b := draw("a"), draw("b")

		ab := Compare(a, b)
		ba := Compare(b, a)

		if len(ab.Outcomes) != len(ba.Outcomes) {
			t.Fatalf("outcome sets differ: %v vs %v", ab.Outcomes, ba.Outcomes)
		}
		for stat, o := range ab.Outcomes {
			if ba.Outcomes[stat] != -o {
				t.Fatalf("%s: %d is not the negation of %d", stat, o, ba.Outcomes[stat])
			}
		}
		if ab.Verdict != -ba.Verdict {
			t.Fatalf("verdict %d is not the negation of %d", ab.Verdict, ba.Verdict)
		}
		if ab.Score() != ba.Score() {
			t.Fatalf("score %q differs from %q", ab.Score(), ba.Score())
		}
	})
}
