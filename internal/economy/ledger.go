package economy

import (
	"errors"
	"fmt"
)

// ErrInsufficient is returned when a ledger cannot cover a removal.
var ErrInsufficient = errors.New("insufficient resources")

// Ledger holds non-negative resource counts. Removals are all-or-nothing.
type Ledger struct {
	counts map[Resource]int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{counts: make(map[Resource]int, len(Resources))}
}

// NewLedgerWith creates a ledger holding n units of every resource kind.
func NewLedgerWith(n int) *Ledger {
	l := NewLedger()
	for _, r := range Resources {
		l.counts[r] = n
	}
	return l
}

// Count returns the units held of r.
func (l *Ledger) Count(r Resource) int {
	return l.counts[r]
}

// Total returns the units held across all kinds.
func (l *Ledger) Total() int {
	total := 0
	for _, n := range l.counts {
		total += n
	}
	return total
}

// Snapshot returns a copy of the non-zero counts.
func (l *Ledger) Snapshot() Collection {
	out := make(Collection, len(l.counts))
	for r, n := range l.counts {
		if n > 0 {
			out[r] = n
		}
	}
	return out
}

// Add credits n units of r. Non-positive amounts are ignored.
func (l *Ledger) Add(r Resource, n int) {
	if n <= 0 {
		return
	}
	l.counts[r] += n
}

// AddAll credits every entry of c.
func (l *Ledger) AddAll(c Collection) {
	for r, n := range c {
		l.Add(r, n)
	}
}

// Has reports whether at least n units of r are held.
func (l *Ledger) Has(r Resource, n int) bool {
	return l.counts[r] >= n
}

// HasAll reports whether every entry of c is covered.
func (l *Ledger) HasAll(c Collection) bool {
	for r, n := range c {
		if !l.Has(r, n) {
			return false
		}
	}
	return true
}

// Remove debits n units of r, failing without change if not held.
func (l *Ledger) Remove(r Resource, n int) error {
	if n < 0 {
		return fmt.Errorf("remove %d %s: negative amount", n, r)
	}
	if !l.Has(r, n) {
		return fmt.Errorf("remove %d %s (have %d): %w", n, r, l.counts[r], ErrInsufficient)
	}
	l.counts[r] -= n
	return nil
}

// RemoveAll debits every entry of c, or nothing at all.
func (l *Ledger) RemoveAll(c Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !l.HasAll(c) {
		return fmt.Errorf("remove %s from %s: %w", c, l.Snapshot(), ErrInsufficient)
	}
	for r, n := range c {
		l.counts[r] -= n
	}
	return nil
}

// Take removes every unit of r and returns how many were held.
func (l *Ledger) Take(r Resource) int {
	n := l.counts[r]
	l.counts[r] = 0
	return n
}

// Transfer moves c from one ledger to another atomically.
func Transfer(from, to *Ledger, c Collection) error {
	if err := from.RemoveAll(c); err != nil {
		return err
	}
	to.AddAll(c)
	return nil
}
