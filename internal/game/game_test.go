package game

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vgerber/settler-island-server/internal/board"
	"github.com/vgerber/settler-island-server/internal/economy"
	"github.com/vgerber/settler-island-server/internal/entropy"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGame(t *testing.T, players int, rng entropy.Source) *Game {
	t.Helper()
	b, err := board.Generate(board.DefaultGenConfig(), entropy.New(1))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rng == nil {
		rng = entropy.New(2)
	}
	g, err := New(b, Settings{Players: players, Logger: quietLogger()}, rng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func act(t *testing.T, id string, data any) Action {
	t.Helper()
	a, err := NewAction(id, data)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func mustPerform(t *testing.T, g *Game, player int, a Action) {
	t.Helper()
	if err := g.Perform(player, a); err != nil {
		t.Fatalf("player %d %s: %v", player, a.ID, err)
	}
}

func expectCode(t *testing.T, err error, want Code) {
	t.Helper()
	if got := CodeOf(err); got != want {
		t.Fatalf("code = %s, want %s (err: %v)", got, want, err)
	}
}

func expectState(t *testing.T, g *Game, want StateID) {
	t.Helper()
	if got := g.State(); got != want {
		t.Fatalf("state = %s, want %s", got, want)
	}
}

func grant(t *testing.T, g *Game, player int, c economy.Collection) {
	t.Helper()
	if err := g.Bank.Pay(g.Players[player].Resources, c); err != nil {
		t.Fatalf("grant %s to player %d: %v", c, player, err)
	}
}

func enter(t *testing.T, g *Game, id StateID) {
	t.Helper()
	if err := g.transition(id); err != nil {
		t.Fatalf("enter %s: %v", id, err)
	}
}

func build(t *testing.T, g *Game, player int, id board.CornerID) {
	t.Helper()
	if err := g.Board.Graph.Build(id, board.BuildingVillage, player); err != nil {
		t.Fatalf("build %s: %v", id, err)
	}
}

// freeCorner returns the first corner obeying the distance rule.
func freeCorner(t *testing.T, g *Game) board.CornerID {
	t.Helper()
	for _, c := range g.Board.Graph.Corners() {
		if g.CanBuildVillage(0, c.ID, false) == nil {
			return c.ID
		}
	}
	t.Fatal("no free corner left")
	return ""
}

func village(id board.CornerID) PlaceSettlementData {
	return PlaceSettlementData{SettlementType: board.BuildingVillage, SettlementID: id}
}

func intPtr(v int) *int { return &v }

// playOpening places every opening settlement with its first free road.
func playOpening(t *testing.T, g *Game) {
	t.Helper()
	for g.State() == StateStartVillagePlacement {
		p := g.CurrentPlayer()
		c := freeCorner(t, g)
		mustPerform(t, g, p, act(t, ActionBuildSettlement, village(c)))
		road := g.Board.Graph.CornerRoads(c)[0]
		mustPerform(t, g, p, act(t, ActionBuildRoad, PlaceRoadData{RoadID: road.ID}))
	}
}

func TestNewValidatesSettings(t *testing.T) {
	b, err := board.Generate(board.DefaultGenConfig(), entropy.New(1))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name     string
		board    *board.Board
		players  int
		rng      entropy.Source
		wantFail bool
	}{
		{"two players", b, 2, entropy.New(1), false},
		{"six players", b, 6, entropy.New(1), false},
		{"one player", b, 1, entropy.New(1), true},
		{"seven players", b, 7, entropy.New(1), true},
		{"no board", nil, 3, entropy.New(1), true},
		{"no randomness", b, 3, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.board, Settings{Players: tt.players, Logger: quietLogger()}, tt.rng)
			if tt.wantFail {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if g.State() != StateStartVillagePlacement || g.CurrentPlayer() != 0 {
				t.Errorf("fresh game in %s with player %d", g.State(), g.CurrentPlayer())
			}
			if g.TotalUnits() != economy.DefaultBankSupply*len(economy.Resources) {
				t.Errorf("total units = %d", g.TotalUnits())
			}
		})
	}
}

func TestOpeningTurnOrder(t *testing.T) {
	g := newTestGame(t, 2, nil)

	x := freeCorner(t, g)
	mustPerform(t, g, 0, act(t, ActionBuildSettlement, village(x)))
	expectState(t, g, StateStartRoadPlacement)
	if pending, ok := g.PendingPlacement(); !ok || pending != x {
		t.Fatalf("pending placement = %s, %v", pending, ok)
	}

	touching := g.Board.Graph.CornerRoads(x)[0]
	expectCode(t, g.Perform(1, act(t, ActionBuildRoad, PlaceRoadData{RoadID: touching.ID})), CodeNotPlayerTurn)
	for _, r := range g.Board.Graph.Roads() {
		if !r.Touches(x) {
			expectCode(t, g.Perform(0, act(t, ActionBuildRoad, PlaceRoadData{RoadID: r.ID})), CodeInvalidLocation)
			break
		}
	}
	expectCode(t, g.Perform(0, act(t, ActionRollDice, nil)), CodeActionNotAllowed)

	mustPerform(t, g, 0, act(t, ActionBuildRoad, PlaceRoadData{RoadID: touching.ID}))
	expectState(t, g, StateStartVillagePlacement)
	if g.CurrentPlayer() != 1 {
		t.Fatalf("turn did not pass to player 1, current %d", g.CurrentPlayer())
	}

	// The last player places both settlements back to back.
	for i := 0; i < 2; i++ {
		c := freeCorner(t, g)
		mustPerform(t, g, 1, act(t, ActionBuildSettlement, village(c)))
		mustPerform(t, g, 1, act(t, ActionBuildRoad, PlaceRoadData{RoadID: g.Board.Graph.CornerRoads(c)[0].ID}))
	}
	expectState(t, g, StateStartVillagePlacement)
	if g.CurrentPlayer() != 0 {
		t.Fatalf("current = %d, want 0", g.CurrentPlayer())
	}

	c := freeCorner(t, g)
	mustPerform(t, g, 0, act(t, ActionBuildSettlement, village(c)))
	mustPerform(t, g, 0, act(t, ActionBuildRoad, PlaceRoadData{RoadID: g.Board.Graph.CornerRoads(c)[0].ID}))
	expectState(t, g, StateRollDice)

	for _, p := range g.Players {
		if n := len(g.Board.Graph.PlayerCorners(p.ID)); n != 2 {
			t.Errorf("player %d has %d settlements", p.ID, n)
		}
		if n := len(g.Board.Graph.PlayerRoads(p.ID)); n != 2 {
			t.Errorf("player %d has %d roads", p.ID, n)
		}
	}
}

func TestOpeningDistanceRule(t *testing.T) {
	g := newTestGame(t, 2, nil)
	x := freeCorner(t, g)
	mustPerform(t, g, 0, act(t, ActionBuildSettlement, village(x)))
	mustPerform(t, g, 0, act(t, ActionBuildRoad, PlaceRoadData{RoadID: g.Board.Graph.CornerRoads(x)[0].ID}))

	neighbour := g.Board.Graph.NeighborCorners(x)[0].ID
	tests := []struct {
		name string
		data PlaceSettlementData
		want Code
	}{
		{"occupied", village(x), CodeInvalidLocation},
		{"adjacent", village(neighbour), CodeInvalidLocation},
		{"unknown", village("nowhere"), CodeInvalidLocation},
		{"city", PlaceSettlementData{SettlementType: board.BuildingCity, SettlementID: freeCorner(t, g)}, CodeActionNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectCode(t, g.Perform(1, act(t, ActionBuildSettlement, tt.data)), tt.want)
			expectState(t, g, StateStartVillagePlacement)
		})
	}
}

func TestPlayOpeningReachesRollDice(t *testing.T) {
	for _, players := range []int{2, 3, 4} {
		g := newTestGame(t, players, nil)
		playOpening(t, g)
		expectState(t, g, StateRollDice)
		for _, p := range g.Players {
			if n := len(g.Board.Graph.PlayerCorners(p.ID)); n != 2 {
				t.Errorf("%d players: player %d has %d settlements", players, p.ID, n)
			}
		}
	}
}

// isolate leaves a single chip on the board.
func isolate(g *Game, tile board.Coord, value int) {
	g.Board.Chips = []board.DiceChip{{Value: value, Tile: tile}}
}

func TestRollDistributesResources(t *testing.T) {
	tile := board.NewCoord(1, 0)
	setup := func(t *testing.T) *Game {
		g := newTestGame(t, 2, entropy.DiceScript(nil, 2, 3))
		isolate(g, tile, 5)
		corners := g.Board.Map.Get(tile).Corners
		build(t, g, 0, corners[0])
		build(t, g, 1, corners[3])
		if err := g.Board.Graph.Build(corners[3], board.BuildingCity, 1); err != nil {
			t.Fatal(err)
		}
		enter(t, g, StateRollDice)
		return g
	}
	res := func(g *Game) economy.Resource { return g.Board.Map.Get(tile).Resource }

	t.Run("village and city", func(t *testing.T) {
		g := setup(t)
		expectCode(t, g.Perform(1, act(t, ActionRollDice, nil)), CodeNotPlayerTurn)
		mustPerform(t, g, 0, act(t, ActionRollDice, nil))
		expectState(t, g, StateSelectAction)
		if roll, ok := g.LastRoll(); !ok || roll.Total() != 5 {
			t.Fatalf("last roll = %+v, %v", roll, ok)
		}
		if got := g.Players[0].Resources.Count(res(g)); got != 1 {
			t.Errorf("village yield = %d, want 1", got)
		}
		if got := g.Players[1].Resources.Count(res(g)); got != 2 {
			t.Errorf("city yield = %d, want 2", got)
		}
		if got := g.Bank.Count(res(g)); got != economy.DefaultBankSupply-3 {
			t.Errorf("bank = %d", got)
		}
	})

	t.Run("robber blocks tile", func(t *testing.T) {
		g := setup(t)
		g.Board.Robber = tile
		mustPerform(t, g, 0, act(t, ActionRollDice, nil))
		if g.Players[0].Resources.Total()+g.Players[1].Resources.Total() != 0 {
			t.Error("robbed tile paid out")
		}
	})

	t.Run("bank shortage pays nobody", func(t *testing.T) {
		g := setup(t)
		if err := g.Bank.Remove(res(g), economy.DefaultBankSupply-2); err != nil {
			t.Fatal(err)
		}
		mustPerform(t, g, 0, act(t, ActionRollDice, nil))
		if g.Players[0].Resources.Total()+g.Players[1].Resources.Total() != 0 {
			t.Error("short bank paid out")
		}
		if g.Bank.Count(res(g)) != 2 {
			t.Errorf("bank = %d, want 2", g.Bank.Count(res(g)))
		}
	})
}

func TestRollSevenSkipsDiscardWhenHandsAreSmall(t *testing.T) {
	g := newTestGame(t, 2, entropy.DiceScript(nil, 3, 4))
	grant(t, g, 1, economy.Collection{economy.Wood: 7})
	enter(t, g, StateRollDice)
	mustPerform(t, g, 0, act(t, ActionRollDice, nil))
	expectState(t, g, StateRobberRelocate)
}

func TestRollSevenDiscard(t *testing.T) {
	g := newTestGame(t, 2, entropy.DiceScript(nil, 3, 4))
	grant(t, g, 0, economy.Collection{economy.Clay: 3, economy.Wood: 3, economy.Ore: 3})
	enter(t, g, StateRollDice)
	mustPerform(t, g, 0, act(t, ActionRollDice, nil))
	expectState(t, g, StateRobberRemoveCards)

	tests := []struct {
		name    string
		player  int
		discard economy.Collection
		want    Code
	}{
		{"player under limit", 1, economy.Collection{economy.Clay: 1}, CodeActionNotAllowed},
		{"wrong count", 0, economy.Collection{economy.Clay: 1}, CodeActionFailed},
		{"not held", 0, economy.Collection{economy.Wheat: 2}, CodeNotEnoughResources},
		{"unknown resource", 0, economy.Collection{"gold": 2}, CodeActionDataInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectCode(t, g.Perform(tt.player, act(t, ActionRemoveCards, tt.discard)), tt.want)
			expectState(t, g, StateRobberRemoveCards)
		})
	}
	expectCode(t, g.Perform(0, act(t, ActionPlaceRobber, nil)), CodeActionNotAllowed)

	mustPerform(t, g, 0, act(t, ActionRemoveCards, economy.Collection{economy.Clay: 1, economy.Wood: 1}))
	expectState(t, g, StateRobberRelocate)
	if got := g.Players[0].Resources.Total(); got != MaxHandSize {
		t.Errorf("hand after discard = %d", got)
	}
	if got := g.Bank.Count(economy.Clay); got != economy.DefaultBankSupply-2 {
		t.Errorf("bank clay = %d", got)
	}
}

func TestEndTurn(t *testing.T) {
	g := newTestGame(t, 3, nil)
	enter(t, g, StateSelectAction)
	expectCode(t, g.Perform(1, act(t, ActionEndTurn, nil)), CodeNotPlayerTurn)
	mustPerform(t, g, 0, act(t, ActionEndTurn, nil))
	expectState(t, g, StateRollDice)
	if g.CurrentPlayer() != 1 {
		t.Errorf("current = %d, want 1", g.CurrentPlayer())
	}
	expectCode(t, g.Perform(1, act(t, ActionEndTurn, nil)), CodeActionNotAllowed)
}

func TestMachineFaultHaltsGame(t *testing.T) {
	g := newTestGame(t, 2, nil)
	err := g.transition("Nowhere")
	if !errors.Is(err, ErrMachineFault) || !errors.Is(err, ErrActionFailed) {
		t.Fatalf("transition error = %v", err)
	}
	expectCode(t, err, CodeActionFailed)
	expectState(t, g, StateError)
	if g.Fault() == nil {
		t.Error("fault not recorded")
	}
	expectCode(t, g.Perform(0, act(t, ActionBuildSettlement, village(freeCorner(t, g)))), CodeActionNotAllowed)
}

func TestPerformRejectsBadInput(t *testing.T) {
	g := newTestGame(t, 2, nil)
	expectCode(t, g.Perform(5, act(t, ActionBuildSettlement, village(freeCorner(t, g)))), CodeActionFailed)
	expectCode(t, g.Perform(-1, act(t, ActionBuildSettlement, village(freeCorner(t, g)))), CodeActionFailed)
	expectCode(t, g.Perform(0, Action{ID: ActionBuildSettlement}), CodeActionDataInvalid)
	expectCode(t, g.Perform(0, Action{ID: ActionBuildSettlement, Data: json.RawMessage(`"nope"`)}), CodeActionDataInvalid)
	expectCode(t, g.Perform(0, Action{ID: ActionBuildSettlement, Data: json.RawMessage(`{"settlement_type":"Castle"}`)}), CodeActionDataInvalid)
	expectState(t, g, StateStartVillagePlacement)
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{nil, CodeOK},
		{reject(ErrActionDataInvalid, "x"), CodeActionDataInvalid},
		{reject(ErrActionNotAllowed, "x"), CodeActionNotAllowed},
		{reject(ErrNotPlayerTurn, "x"), CodeNotPlayerTurn},
		{reject(ErrInvalidLocation, "x"), CodeInvalidLocation},
		{reject(ErrNotEnoughResources, "x"), CodeNotEnoughResources},
		{reject(ErrActionFailed, "x"), CodeActionFailed},
		{errors.New("other"), CodeActionFailed},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	g := newTestGame(t, 3, nil)
	playOpening(t, g)
	s := g.Snapshot()

	if s.State != StateRollDice || len(s.Players) != 3 {
		t.Fatalf("snapshot state %s with %d players", s.State, len(s.Players))
	}
	if len(s.Tiles) != 19 || len(s.Corners) != 54 || len(s.Roads) != 72 {
		t.Fatalf("snapshot sizes: tiles %d corners %d roads %d", len(s.Tiles), len(s.Corners), len(s.Roads))
	}
	owned, ports := 0, 0
	for _, c := range s.Corners {
		if c.Owner != nil {
			owned++
		}
		if c.Port != "" {
			ports++
		}
	}
	if owned != 6 || ports != 18 {
		t.Errorf("owned corners %d, port corners %d", owned, ports)
	}
	if s.DeckRemaining != 25 {
		t.Errorf("deck = %d", s.DeckRemaining)
	}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	for _, key := range []string{`"state":"RollDice"`, `"dice_value"`, `"building":"Village"`, `"bank"`} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("snapshot JSON misses %s", key)
		}
	}

	// Mutating the snapshot leaves the game alone.
	s.Players[0].Resources[economy.Clay] = 99
	if g.Players[0].Resources.Count(economy.Clay) != 0 {
		t.Error("snapshot aliases the player ledger")
	}
}
