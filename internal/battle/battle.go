// Package battle compares two character variants stat by stat.
package battle

import (
	"cmp"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vsbattles/versus/internal/character"
)

// Outcome is the result of one stat. Negative favours the first variant.
type Outcome int

const (
	FirstWins  Outcome = -1
	Tie        Outcome = 0
	SecondWins Outcome = 1
)

func (o Outcome) String() string {
	switch o {
	case FirstWins:
		return "first"
	case SecondWins:
		return "second"
	default:
		return "tie"
	}
}

// Result holds the per-stat outcomes of a battle and their sum.
type Result struct {
	First  *character.Variant
	Second *character.Variant

	// Outcomes has an entry for every stat both variants rate.
	Outcomes map[string]Outcome
	// Stats lists the compared stats in the first variant's order.
	Stats []string
	// Skipped lists stats rated by only one variant.
	Skipped []string
	// Verdict is the sum of all outcomes: negative favours First, positive Second.
	Verdict int
}

// Compare ranks first against second on every stat both rate. A higher tier rank wins.
func Compare(first, second *character.Variant) *Result {
	r := &Result{
		First:    first,
		Second:   second,
		Outcomes: make(map[string]Outcome),
	}

	for _, stat := range first.StatNames() {
		a, _ := first.Get(stat)
		b, ok := second.Get(stat)
		if !ok {
			r.skip(stat, second)
			continue
		}
		outcome := Outcome(cmp.Compare(b.Rank, a.Rank))
		r.Outcomes[stat] = outcome
		r.Stats = append(r.Stats, stat)
		r.Verdict += int(outcome)
	}
	for _, stat := range second.StatNames() {
		if _, ok := first.Get(stat); !ok {
			r.skip(stat, first)
		}
	}

	return r
}

func (r *Result) skip(stat string, missing *character.Variant) {
	slog.Debug("Stat has no tier value for one side, skipping", "stat", stat, "variant", missing.Label())
	r.Skipped = append(r.Skipped, stat)
}

// Wins counts the stats each side won outright.
func (r *Result) Wins() (first, second int) {
	for _, o := range r.Outcomes {
		switch o {
		case FirstWins:
			first++
		case SecondWins:
			second++
		}
	}
	return first, second
}

// Score formats the win counts as "max - min".
func (r *Result) Score() string {
	a, b := r.Wins()
	return fmt.Sprintf("%d - %d", max(a, b), min(a, b))
}

// Winner returns the favoured variant, or nil on a tie.
func (r *Result) Winner() *character.Variant {
	switch {
	case r.Verdict < 0:
		return r.First
	case r.Verdict > 0:
		return r.Second
	default:
		return nil
	}
}

func (r *Result) sideName(o int) string {
	switch {
	case o < 0:
		return r.First.Label()
	case o > 0:
		return r.Second.Label()
	default:
		return "Tie!"
	}
}

func (r *Result) String() string {
	rule := strings.Repeat("-", 50)
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nVersus Battle:\n%s vs. %s!\nBegin!\n%s\n", rule, r.First.Label(), r.Second.Label(), rule)
	for _, stat := range r.Stats {
		fmt.Fprintf(&b, "%s: %s\n", stat, r.sideName(int(r.Outcomes[stat])))
	}
	if r.Verdict == 0 {
		fmt.Fprintf(&b, "\nTie! %s\n", r.Score())
	} else {
		fmt.Fprintf(&b, "\n%s wins %s!\n", r.sideName(r.Verdict), r.Score())
	}
	b.WriteString(rule + "\n")
	return b.String()
}
