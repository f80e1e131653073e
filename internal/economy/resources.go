// Package economy provides resource kinds, per-player ledgers, the bank
// supply and the trade contracts used by seaports and bank trades.
package economy

import (
	"errors"
	"fmt"
	"strings"
)

// Resource identifies one of the five fixed resource kinds.
type Resource string

const (
	Clay  Resource = "clay"
	Wood  Resource = "wood"
	Ore   Resource = "ore"
	Sheep Resource = "sheep"
	Wheat Resource = "wheat"
)

// Resources lists every resource kind in canonical order.
var Resources = [5]Resource{Clay, Wood, Ore, Sheep, Wheat}

// ErrUnknownResource is returned for identifiers outside the fixed set.
var ErrUnknownResource = errors.New("unknown resource")

// Valid reports whether r is one of the five resource kinds.
func (r Resource) Valid() bool {
	switch r {
	case Clay, Wood, Ore, Sheep, Wheat:
		return true
	default:
		return false
	}
}

// ParseResource converts an identifier to a Resource.
func ParseResource(s string) (Resource, error) {
	r := Resource(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownResource, s)
	}
	return r, nil
}

// UnmarshalText lets payloads name resources in any case.
func (r *Resource) UnmarshalText(text []byte) error {
	parsed, err := ParseResource(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Collection maps resource kind to a unit count. It is the wire shape of
// every resource-bearing payload.
type Collection map[Resource]int

// Total returns the number of units in the collection.
func (c Collection) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Validate rejects unknown kinds and negative counts.
func (c Collection) Validate() error {
	for r, n := range c {
		if !r.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownResource, string(r))
		}
		if n < 0 {
			return fmt.Errorf("negative count %d for %s", n, r)
		}
	}
	return nil
}

// Clone returns a copy without zero entries.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for r, n := range c {
		if n != 0 {
			out[r] = n
		}
	}
	return out
}

// Overlaps reports whether both collections carry units of the same kind.
func (c Collection) Overlaps(other Collection) bool {
	for r, n := range c {
		if n > 0 && other[r] > 0 {
			return true
		}
	}
	return false
}

func (c Collection) String() string {
	parts := make([]string, 0, len(c))
	for _, r := range Resources {
		if n := c[r]; n != 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", r, n))
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}
