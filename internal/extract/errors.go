package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedMention marks a scanned phrase that no tier of the stat claims.
	ErrUnresolvedMention = errors.New("unresolved mention")
	// ErrEmptyExtraction marks a stat for which no tier value was found.
	ErrEmptyExtraction = errors.New("empty extraction")
	// ErrMissingKey is returned for a stat sheet without a Key line.
	ErrMissingKey = errors.New("stat sheet has no Key line")
)

// StatError is a recoverable problem with one stat. Fragment is the 0-based fragment
// index, or -1 when the problem concerns the stat as a whole.
type StatError struct {
	Stat     string
	Fragment int
	Detail   string
	Err      error
}

func (e *StatError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Stat, e.Err)
	if e.Fragment >= 0 {
		msg = fmt.Sprintf("%s (fragment %d): %v", e.Stat, e.Fragment, e.Err)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *StatError) Unwrap() error {
	return e.Err
}
