// Package engine hosts games for the session layer: one Match per game,
// serialized behind a mutex, with an event log, statistics and an optional
// store that receives a snapshot after every applied action.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vgerber/settler-island-server/internal/board"
	"github.com/vgerber/settler-island-server/internal/entropy"
	"github.com/vgerber/settler-island-server/internal/game"
)

// Event categories.
const (
	CategoryOpening  = "opening"
	CategoryBuild    = "build"
	CategoryDice     = "dice"
	CategoryRobber   = "robber"
	CategoryTrade    = "trade"
	CategoryCard     = "card"
	CategoryTurn     = "turn"
	CategoryRejected = "rejected"
)

// Event is one performed or rejected action.
type Event struct {
	Seq         uint64    `json:"seq" db:"seq"`
	Player      int       `json:"player" db:"player"`
	Action      string    `json:"action" db:"action"`
	Category    string    `json:"category" db:"category"`
	Code        game.Code `json:"code" db:"code"`
	State       string    `json:"state" db:"state"` // State after the action
	Description string    `json:"description" db:"description"`
}

// Record is what a Store persists after each applied action.
type Record struct {
	ID       string
	Seed     int64
	Players  int
	State    game.StateID
	Snapshot game.Snapshot
	Updated  time.Time
}

// Store persists matches. SaveEvents receives only events not handed over
// before.
type Store interface {
	SaveMatch(rec Record) error
	SaveEvents(matchID string, events []Event) error
}

// Config describes a new match.
type Config struct {
	Players int
	Seed    int64           // 0 draws a random seed
	Board   board.GenConfig // Zero value means board.DefaultGenConfig()
	Store   Store           // Optional
	Logger  *slog.Logger    // nil means slog.Default()
}

// Match owns one game and serializes every access to it.
type Match struct {
	ID      string
	Seed    int64
	Created time.Time

	mu      sync.Mutex
	game    *game.Game
	events  []Event
	saved   int // events already handed to the store
	seq     uint64
	stats   Stats
	store   Store
	log     *slog.Logger
	players int
}

// NewMatch generates a board and starts a game on it.
func NewMatch(cfg Config) (*Match, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	seed, err := entropy.SeedOrRandom(cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("match seed: %w", err)
	}
	genCfg := cfg.Board
	if genCfg.Size == 0 {
		genCfg = board.DefaultGenConfig()
	}

	rng := entropy.New(seed)
	b, err := board.Generate(genCfg, rng)
	if err != nil {
		return nil, fmt.Errorf("generate board: %w", err)
	}

	id := uuid.NewString()
	logger = logger.With("match", id)
	g, err := game.New(b, game.Settings{Players: cfg.Players, Logger: logger}, rng)
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}

	m := &Match{
		ID:      id,
		Seed:    seed,
		Created: time.Now().UTC(),
		game:    g,
		store:   cfg.Store,
		log:     logger,
		players: cfg.Players,
		stats:   newStats(),
	}
	logger.Info("match created",
		"seed", seed,
		"players", cfg.Players,
		"tiles", b.Map.TileCount(),
		"corners", b.Graph.CornerCount(),
		"roads", b.Graph.RoadCount(),
	)
	if err := m.persist(); err != nil {
		logger.Error("initial save failed", "error", err)
	}
	return m, nil
}

// Perform applies one action for player and records it. The returned error
// is the game's rejection, if any; store failures are only logged.
func (m *Match) Perform(player int, a game.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.perform(player, a)
}

func (m *Match) perform(player int, a game.Action) error {
	from := m.game.State()
	err := m.game.Perform(player, a)
	m.record(player, a, from, err)
	if err != nil {
		return err
	}
	if err := m.persist(); err != nil {
		m.log.Error("save failed", "error", err)
	}
	return nil
}

func (m *Match) record(player int, a game.Action, from game.StateID, err error) {
	m.seq++
	e := Event{
		Seq:      m.seq,
		Player:   player,
		Action:   a.ID,
		Category: categoryOf(a.ID),
		Code:     game.CodeOf(err),
		State:    string(m.game.State()),
	}
	switch {
	case err != nil:
		e.Category = CategoryRejected
		e.Description = err.Error()
	case from == game.StateStartVillagePlacement || from == game.StateStartRoadPlacement:
		e.Category = CategoryOpening
		e.Description = m.describe(player, a)
	default:
		e.Description = m.describe(player, a)
	}
	m.events = append(m.events, e)
	m.stats.count(e)
	if err == nil && a.ID == game.ActionRollDice {
		if roll, ok := m.game.LastRoll(); ok {
			m.stats.rolled(roll)
		}
	}
}

func (m *Match) describe(player int, a game.Action) string {
	switch a.ID {
	case game.ActionRollDice:
		if roll, ok := m.game.LastRoll(); ok {
			return fmt.Sprintf("player %d rolled %d (%d+%d)", player, roll.Total(), roll.A, roll.B)
		}
	case game.ActionEndTurn:
		return fmt.Sprintf("player %d ended the turn, player %d to move", player, m.game.CurrentPlayer())
	}
	return fmt.Sprintf("player %d: %s", player, a.ID)
}

// persist hands the snapshot and all unsaved events to the store.
func (m *Match) persist() error {
	if m.store == nil {
		return nil
	}
	if pending := m.events[m.saved:]; len(pending) > 0 {
		if err := m.store.SaveEvents(m.ID, pending); err != nil {
			return fmt.Errorf("save events: %w", err)
		}
		m.saved = len(m.events)
	}
	rec := Record{
		ID:       m.ID,
		Seed:     m.Seed,
		Players:  m.players,
		State:    m.game.State(),
		Snapshot: m.game.Snapshot(),
		Updated:  time.Now().UTC(),
	}
	if err := m.store.SaveMatch(rec); err != nil {
		return fmt.Errorf("save match: %w", err)
	}
	return nil
}

// Snapshot returns the read-only view of the game.
func (m *Match) Snapshot() game.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.game.Snapshot()
}

// Events returns a copy of the event log.
func (m *Match) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Stats returns a copy of the match statistics.
func (m *Match) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats.clone()
}

// Standings scores every player.
func (m *Match) Standings() []Standing {
	m.mu.Lock()
	defer m.mu.Unlock()
	return standings(m.game)
}

// Fault returns the stored machine fault, if the game halted.
func (m *Match) Fault() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.game.Fault()
}

// Inspect runs fn with the game while holding the match lock. fn must not
// retain g.
func (m *Match) Inspect(fn func(g *game.Game)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.game)
}

func categoryOf(action string) string {
	switch action {
	case game.ActionBuildSettlement, game.ActionBuildRoad:
		return CategoryBuild
	case game.ActionRollDice:
		return CategoryDice
	case game.ActionPlaceRobber, game.ActionRemoveCards:
		return CategoryRobber
	case game.ActionOfferTrade, game.ActionOfferBankTrade, game.ActionAcceptTrade,
		game.ActionRejectTrade, game.ActionCompleteTrade, game.ActionCancelTrade:
		return CategoryTrade
	case game.ActionDrawDevelopmentCard, game.ActionPlayDevelopmentCard:
		return CategoryCard
	}
	return CategoryTurn
}
