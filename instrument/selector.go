package instrument

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned in strict mode when a reference resolves to
// no instrument.
var ErrNotFound = errors.New("instrument not found")

// Selector resolves instrument references against an ordered table and
// applies the chosen entry. Index selection wraps modulo the table
// length in both directions, so stepping past either end cycles.
type Selector struct {
	table []Entry
	index int
	apply func(Entry)

	// Strict makes unresolved references an error. Interactive
	// stepping leaves it off and silently keeps the current
	// instrument instead.
	Strict bool
}

// NewSelector builds a selector over table. apply is called with each
// newly selected entry; it may be nil.
func NewSelector(table []Entry, apply func(Entry)) *Selector {
	return &Selector{table: table, apply: apply}
}

// Index returns the current instrument index.
func (s *Selector) Index() int { return s.index }

// Table returns the ordered table the selector resolves against.
func (s *Selector) Table() []Entry { return s.table }

// Current returns the currently selected entry.
func (s *Selector) Current() (Entry, bool) {
	if len(s.table) == 0 {
		return Entry{}, false
	}
	return s.table[s.index], true
}

// Select resolves an index modulo the table length and applies that
// instrument. Negative indexes count from the end.
func (s *Selector) Select(index int) error {
	if len(s.table) == 0 {
		if s.Strict {
			return fmt.Errorf("index %d: %w", index, ErrNotFound)
		}
		return nil
	}
	n := len(s.table)
	s.index = ((index % n) + n) % n
	if s.apply != nil {
		s.apply(s.table[s.index])
	}
	return nil
}

// SelectName resolves a case-insensitive substring query to the first
// matching entry in table order.
func (s *Selector) SelectName(query string) error {
	q := strings.ToLower(query)
	for i, e := range s.table {
		if strings.Contains(strings.ToLower(e.Name), q) {
			return s.Select(i)
		}
	}
	if s.Strict {
		return fmt.Errorf("name %q: %w", query, ErrNotFound)
	}
	return nil
}

// Next steps forward by delta instruments, wrapping around.
func (s *Selector) Next(delta int) error {
	return s.Select(s.index + delta)
}

// Prev steps backward by delta instruments, wrapping around.
func (s *Selector) Prev(delta int) error {
	return s.Select(s.index - delta)
}
