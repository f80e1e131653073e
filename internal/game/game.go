// Package game implements the rules engine: players, the state machine that
// drives turn flow, trading, the robber and development cards.
//
// A Game is single-writer. Callers serialize Perform per game; nothing inside
// blocks or performs I/O.
package game

import (
	"fmt"
	"log/slog"

	"github.com/vgerber/settler-island-server/internal/board"
	"github.com/vgerber/settler-island-server/internal/economy"
	"github.com/vgerber/settler-island-server/internal/entropy"
)

// Player count limits.
const (
	MinPlayers = 2
	MaxPlayers = 6
)

// Settings configures a new game.
type Settings struct {
	Players    int
	BankSupply int          // Units per resource kind; 0 means economy.DefaultBankSupply
	Logger     *slog.Logger // nil means slog.Default()
}

// DiceRoll is the result of rolling two six-sided dice.
type DiceRoll struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Total returns the sum of both dice.
func (d DiceRoll) Total() int {
	return d.A + d.B
}

// Game is the aggregate of board, players, bank and turn flow.
type Game struct {
	Board   *board.Board
	Players []*Player
	Bank    *economy.Bank

	current  int
	offer    *TradeOffer
	machine  *Machine
	rng      entropy.Source
	log      *slog.Logger
	lastRoll *DiceRoll

	// Corner placed in StartVillagePlacement, awaiting its road.
	placed board.CornerID
}

// New creates a game in StartVillagePlacement with player 0 to move.
func New(b *board.Board, settings Settings, rng entropy.Source) (*Game, error) {
	if b == nil {
		return nil, fmt.Errorf("new game: nil board")
	}
	if rng == nil {
		return nil, fmt.Errorf("new game: nil randomness source")
	}
	if settings.Players < MinPlayers || settings.Players > MaxPlayers {
		return nil, fmt.Errorf("new game: %d players, need %d to %d", settings.Players, MinPlayers, MaxPlayers)
	}
	supply := settings.BankSupply
	if supply == 0 {
		supply = economy.DefaultBankSupply
	}
	logger := settings.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g := &Game{
		Board:   b,
		Players: make([]*Player, settings.Players),
		Bank:    economy.NewBank(supply),
		machine: newMachine(states),
		rng:     rng,
		log:     logger,
	}
	for i := range g.Players {
		g.Players[i] = newPlayer(i)
	}
	if err := g.machine.transition(g, StateStartVillagePlacement); err != nil {
		return nil, err
	}
	return g, nil
}

// Perform validates and applies one action for player. On any error the game
// is left unchanged, except for a machine fault which halts the game.
func (g *Game) Perform(player int, a Action) error {
	var err error
	if player < 0 || player >= len(g.Players) {
		err = reject(ErrActionFailed, "unknown player %d", player)
	} else {
		err = g.machine.current.perform(g, player, a)
	}

	if err != nil {
		g.log.Debug("action rejected",
			"player", player,
			"action", a.ID,
			"state", string(g.State()),
			"code", string(CodeOf(err)),
			"err", err,
		)
	}
	return err
}

// State returns the id of the current state.
func (g *Game) State() StateID {
	return g.machine.Current()
}

// Fault returns the error that halted the game, or nil.
func (g *Game) Fault() error {
	return g.machine.fault
}

// CurrentPlayer returns the id of the turn holder.
func (g *Game) CurrentPlayer() int {
	return g.current
}

// LastRoll returns the most recent dice roll, if any.
func (g *Game) LastRoll() (DiceRoll, bool) {
	if g.lastRoll == nil {
		return DiceRoll{}, false
	}
	return *g.lastRoll, true
}

// Offer returns the open trade offer, or nil.
func (g *Game) Offer() *TradeOffer {
	return g.offer
}

// PendingPlacement returns the corner awaiting its road during the opening.
func (g *Game) PendingPlacement() (board.CornerID, bool) {
	return g.placed, g.placed != ""
}

// IsPlayerTurn reports whether player holds the turn.
func (g *Game) IsPlayerTurn(player int) bool {
	return g.current == player
}

// TotalUnits returns the units held by all players plus the bank.
func (g *Game) TotalUnits() int {
	total := g.Bank.Total()
	for _, p := range g.Players {
		total += p.Resources.Total()
	}
	return total
}

// AnyOverHandLimit reports whether some player must discard.
func (g *Game) AnyOverHandLimit() bool {
	for _, p := range g.Players {
		if p.OverHandLimit() {
			return true
		}
	}
	return false
}

func (g *Game) endTurn() {
	g.current = (g.current + 1) % len(g.Players)
}

func (g *Game) transition(id StateID) error {
	return g.machine.transition(g, id)
}

func (g *Game) rollDice() DiceRoll {
	roll := DiceRoll{A: g.rng.Intn(6) + 1, B: g.rng.Intn(6) + 1}
	g.lastRoll = &roll
	return roll
}

// distribute pays out every tile matching value, except the robbed one.
func (g *Game) distribute(value int) map[int]economy.Collection {
	owed := make(map[int]economy.Collection)
	for _, tile := range g.Board.TilesByDiceValue(value) {
		if tile.Coord == g.Board.Robber || tile.Kind != board.TileResource {
			continue
		}
		for _, id := range tile.Corners {
			corner, ok := g.Board.Graph.Corner(id)
			if !ok || corner.Settlement == nil {
				continue
			}
			owner := corner.Settlement.Owner
			if owed[owner] == nil {
				owed[owner] = make(economy.Collection)
			}
			owed[owner][tile.Resource] += corner.Settlement.Building.Yield()
		}
	}

	paid := g.Bank.Ration(owed)
	for id, c := range paid {
		if err := g.Bank.Pay(g.Players[id].Resources, c); err != nil {
			// Ration only grants what the bank holds.
			g.log.Error("bank payout failed", "player", id, "resources", c.String(), "err", err)
		}
	}
	return paid
}

// CanBuildRoad reports whether player may claim road id outside the opening.
// An endpoint qualifies when the player owns its settlement, or owns another
// road there and no opponent has built on it.
func (g *Game) CanBuildRoad(player int, id board.RoadID) error {
	road, ok := g.Board.Graph.Road(id)
	if !ok {
		return reject(ErrInvalidLocation, "road %s not found", id)
	}
	if road.Claimed() {
		return reject(ErrInvalidLocation, "road %s already built", id)
	}
	for _, end := range []board.CornerID{road.A, road.B} {
		corner, ok := g.Board.Graph.Corner(end)
		if !ok {
			return reject(ErrActionFailed, "road %s has no corner %s", id, end)
		}
		if corner.IsOwner(player) {
			return nil
		}
		if corner.Occupied() {
			continue
		}
		if g.Board.Graph.HasPlayerRoadAt(end, player) {
			return nil
		}
	}
	return reject(ErrInvalidLocation, "road %s is not connected to player %d", id, player)
}

func (g *Game) legalRoadCount(player int) int {
	n := 0
	for _, r := range g.Board.Graph.Roads() {
		if g.CanBuildRoad(player, r.ID) == nil {
			n++
		}
	}
	return n
}

// CanBuildVillage reports whether player may found a village on corner id.
// requireRoad is false during the opening placement.
func (g *Game) CanBuildVillage(player int, id board.CornerID, requireRoad bool) error {
	corner, ok := g.Board.Graph.Corner(id)
	if !ok {
		return reject(ErrInvalidLocation, "settlement %s not found", id)
	}
	if corner.Occupied() {
		return reject(ErrInvalidLocation, "settlement %s already built", id)
	}
	if board.AnyOccupied(g.Board.Graph.NeighborCorners(id)) {
		return reject(ErrInvalidLocation, "settlement %s is next to a settlement", id)
	}
	if requireRoad && !g.Board.Graph.HasPlayerRoadAt(id, player) {
		return reject(ErrInvalidLocation, "settlement %s needs a road of player %d", id, player)
	}
	return nil
}

// CanBuildCity reports whether player may upgrade the village on corner id.
func (g *Game) CanBuildCity(player int, id board.CornerID) error {
	corner, ok := g.Board.Graph.Corner(id)
	if !ok {
		return reject(ErrInvalidLocation, "settlement %s not found", id)
	}
	if !corner.IsOwner(player) || corner.Settlement.Building != board.BuildingVillage {
		return reject(ErrInvalidLocation, "settlement %s is no village of player %d", id, player)
	}
	return nil
}

func (g *Game) pay(p *Player, cost economy.Collection) error {
	if !p.Resources.HasAll(cost) {
		return reject(ErrNotEnoughResources, "player %d has %s, needs %s", p.ID, p.Resources.Snapshot(), cost)
	}
	if err := g.Bank.Collect(p.Resources, cost); err != nil {
		return reject(ErrActionFailed, "collect %s from player %d: %v", cost, p.ID, err)
	}
	return nil
}
