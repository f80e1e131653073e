// Package entropy provides the randomness sources used by board generation,
// dice rolls and robber steals. Every consumer takes a Source so games can be
// replayed from a seed or driven by a scripted sequence in tests.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"
	"sync"
)

// Source is the subset of *math/rand.Rand the game needs.
type Source interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// New returns a deterministic source for the given seed.
func New(seed int64) *mrand.Rand {
	return mrand.New(mrand.NewSource(seed))
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	// Keep seeds positive so they read well in logs and the database.
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1), nil
}

// SeedOrRandom returns seed unchanged unless it is zero, in which case a
// fresh crypto seed is drawn.
func SeedOrRandom(seed int64) (int64, error) {
	if seed != 0 {
		return seed, nil
	}
	return NewSeed()
}

// Script replays a fixed sequence of Intn results, each reduced modulo n.
// Once the sequence is exhausted it defers to Fallback (or returns 0).
// Shuffle always defers to Fallback and is a no-op without one.
type Script struct {
	Fallback Source

	mu     sync.Mutex
	values []int
}

// NewScript creates a scripted source.
func NewScript(fallback Source, values ...int) *Script {
	return &Script{Fallback: fallback, values: values}
}

// Remaining reports how many scripted values are left.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

func (s *Script) Intn(n int) int {
	if n <= 0 {
		panic("entropy: invalid argument to Intn")
	}
	s.mu.Lock()
	if len(s.values) > 0 {
		v := s.values[0]
		s.values = s.values[1:]
		s.mu.Unlock()
		if v < 0 {
			v = -v
		}
		return v % n
	}
	s.mu.Unlock()
	if s.Fallback != nil {
		return s.Fallback.Intn(n)
	}
	return 0
}

func (s *Script) Shuffle(n int, swap func(i, j int)) {
	if s.Fallback != nil {
		s.Fallback.Shuffle(n, swap)
	}
}

// DiceScript builds a Script that makes the next rolls come out as the given
// pairs of die faces (1..6).
func DiceScript(fallback Source, faces ...int) *Script {
	values := make([]int, len(faces))
	for i, f := range faces {
		values[i] = f - 1
	}
	return NewScript(fallback, values...)
}
