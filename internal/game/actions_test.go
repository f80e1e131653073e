package game

import (
	"encoding/json"
	"testing"

	"github.com/vgerber/settler-island-server/internal/board"
	"github.com/vgerber/settler-island-server/internal/economy"
	"github.com/vgerber/settler-island-server/internal/entropy"
)

const totalUnits = economy.DefaultBankSupply * len(economy.Resources)

func expectConserved(t *testing.T, g *Game) {
	t.Helper()
	if got := g.TotalUnits(); got != totalUnits {
		t.Fatalf("resource units = %d, want %d", got, totalUnits)
	}
}

// unconnectedCorner returns a corner obeying the distance rule without any
// road of player.
func unconnectedCorner(t *testing.T, g *Game, player int) board.CornerID {
	t.Helper()
	for _, c := range g.Board.Graph.Corners() {
		if g.CanBuildVillage(player, c.ID, false) == nil && !g.Board.Graph.HasPlayerRoadAt(c.ID, player) {
			return c.ID
		}
	}
	t.Fatal("no unconnected corner")
	return ""
}

func TestBuildSettlementAndCity(t *testing.T) {
	g := newTestGame(t, 2, nil)
	enter(t, g, StateSelectAction)

	c0 := freeCorner(t, g)
	if err := g.Board.Graph.ClaimRoad(g.Board.Graph.CornerRoads(c0)[0].ID, 0); err != nil {
		t.Fatal(err)
	}

	expectCode(t, g.Perform(0, act(t, ActionBuildSettlement, village(c0))), CodeNotEnoughResources)
	grant(t, g, 0, economy.VillageCost())
	expectCode(t, g.Perform(0, act(t, ActionBuildSettlement, village(unconnectedCorner(t, g, 0)))), CodeInvalidLocation)
	expectCode(t, g.Perform(1, act(t, ActionBuildSettlement, village(c0))), CodeNotPlayerTurn)
	expectCode(t, g.Perform(0, Action{ID: ActionBuildSettlement, Data: json.RawMessage(`{"settlement_id":"x"}`)}), CodeActionDataInvalid)
	if g.Players[0].Resources.Total() != 4 {
		t.Fatalf("failed builds spent resources: %s", g.Players[0].Resources.Snapshot())
	}

	mustPerform(t, g, 0, act(t, ActionBuildSettlement, village(c0)))
	corner, _ := g.Board.Graph.Corner(c0)
	if !corner.IsOwner(0) || corner.Settlement.Building != board.BuildingVillage {
		t.Fatalf("corner after build: %+v", corner.Settlement)
	}
	if g.Players[0].Resources.Total() != 0 {
		t.Errorf("village not paid: %s", g.Players[0].Resources.Snapshot())
	}
	expectConserved(t, g)

	city := PlaceSettlementData{SettlementType: board.BuildingCity, SettlementID: c0}
	expectCode(t, g.Perform(0, act(t, ActionBuildSettlement, city)), CodeNotEnoughResources)
	grant(t, g, 0, economy.CityCost())
	mustPerform(t, g, 0, act(t, ActionBuildSettlement, city))
	if corner.Settlement.Building != board.BuildingCity {
		t.Fatalf("city not built: %+v", corner.Settlement)
	}
	expectConserved(t, g)

	other := unconnectedCorner(t, g, 0)
	build(t, g, 1, other)
	grant(t, g, 0, economy.CityCost())
	expectCode(t, g.Perform(0, act(t, ActionBuildSettlement, PlaceSettlementData{SettlementType: board.BuildingCity, SettlementID: other})), CodeInvalidLocation)
	expectCode(t, g.Perform(0, act(t, ActionBuildSettlement, city)), CodeInvalidLocation)
	expectState(t, g, StateSelectAction)
}

func TestBuildRoad(t *testing.T) {
	g := newTestGame(t, 2, nil)
	enter(t, g, StateSelectAction)
	c0 := freeCorner(t, g)
	build(t, g, 0, c0)
	road := g.Board.Graph.CornerRoads(c0)[0]

	expectCode(t, g.Perform(0, act(t, ActionBuildRoad, PlaceRoadData{RoadID: road.ID})), CodeNotEnoughResources)
	grant(t, g, 0, economy.RoadCost())

	for _, r := range g.Board.Graph.Roads() {
		if g.CanBuildRoad(0, r.ID) != nil {
			expectCode(t, g.Perform(0, act(t, ActionBuildRoad, PlaceRoadData{RoadID: r.ID})), CodeInvalidLocation)
			break
		}
	}
	expectCode(t, g.Perform(0, act(t, ActionBuildRoad, PlaceRoadData{RoadID: "nowhere"})), CodeInvalidLocation)

	mustPerform(t, g, 0, act(t, ActionBuildRoad, PlaceRoadData{RoadID: road.ID}))
	if !road.IsOwner(0) || g.Players[0].Resources.Total() != 0 {
		t.Fatalf("road owner %v, resources %s", road.Owner, g.Players[0].Resources.Snapshot())
	}
	expectConserved(t, g)

	grant(t, g, 0, economy.RoadCost())
	expectCode(t, g.Perform(0, act(t, ActionBuildRoad, PlaceRoadData{RoadID: road.ID})), CodeInvalidLocation)
}

func TestRoadsStopAtOpponentSettlements(t *testing.T) {
	g := newTestGame(t, 2, nil)
	graph := g.Board.Graph

	a := freeCorner(t, g)
	first := graph.CornerRoads(a)[0]
	b := first.Other(a)
	var next *board.Road
	for _, r := range graph.CornerRoads(b) {
		if r.ID != first.ID {
			next = r
			break
		}
	}
	if err := graph.ClaimRoad(first.ID, 0); err != nil {
		t.Fatal(err)
	}

	if err := g.CanBuildRoad(0, next.ID); err != nil {
		t.Fatalf("extension of own road rejected: %v", err)
	}
	build(t, g, 1, b)
	expectCode(t, g.CanBuildRoad(0, next.ID), CodeInvalidLocation)

	for _, r := range graph.CornerRoads(a) {
		if r.ID != first.ID {
			if err := g.CanBuildRoad(0, r.ID); err != nil {
				t.Errorf("free end of own road rejected: %v", err)
			}
		}
	}
}

func TestDrawDevelopmentCard(t *testing.T) {
	g := newTestGame(t, 2, nil)
	enter(t, g, StateSelectAction)
	draw := act(t, ActionDrawDevelopmentCard, nil)

	expectCode(t, g.Perform(0, draw), CodeNotEnoughResources)
	grant(t, g, 0, economy.DevelopmentCardCost())
	mustPerform(t, g, 0, draw)

	held := 0
	for _, n := range g.Players[0].Cards {
		held += n
	}
	if held != 1 || g.Board.Deck.Remaining() != 24 {
		t.Fatalf("held %d cards, deck %d", held, g.Board.Deck.Remaining())
	}
	expectConserved(t, g)

	for g.Board.Deck.Remaining() > 0 {
		g.Board.Deck.Draw()
	}
	grant(t, g, 0, economy.DevelopmentCardCost())
	expectCode(t, g.Perform(0, draw), CodeActionFailed)
	if g.Players[0].Resources.Total() != 3 {
		t.Error("failed draw spent resources")
	}
}

func playCard(t *testing.T, data PlayDevelopmentCardData) Action {
	return act(t, ActionPlayDevelopmentCard, data)
}

func TestPlayDevelopmentCards(t *testing.T) {
	t.Run("victory point", func(t *testing.T) {
		g := newTestGame(t, 2, nil)
		enter(t, g, StateSelectAction)
		g.Players[0].Cards[board.CardVictoryPoint] = 1
		expectCode(t, g.Perform(0, playCard(t, PlayDevelopmentCardData{Card: board.CardVictoryPoint})), CodeActionNotAllowed)
		if g.Players[0].CardCount(board.CardVictoryPoint) != 1 {
			t.Error("victory point card spent")
		}
	})

	t.Run("unknown card", func(t *testing.T) {
		g := newTestGame(t, 2, nil)
		enter(t, g, StateSelectAction)
		expectCode(t, g.Perform(0, playCard(t, PlayDevelopmentCardData{Card: "Joker"})), CodeActionDataInvalid)
	})

	t.Run("knight", func(t *testing.T) {
		g := newTestGame(t, 2, nil)
		enter(t, g, StateSelectAction)
		knight := playCard(t, PlayDevelopmentCardData{Card: board.CardKnight})
		expectCode(t, g.Perform(0, knight), CodeNotEnoughResources)
		g.Players[0].Cards[board.CardKnight] = 1
		mustPerform(t, g, 0, knight)
		expectState(t, g, StateRobberRelocate)
		if g.Players[0].CardCount(board.CardKnight) != 0 {
			t.Error("knight not spent")
		}
	})

	t.Run("monopoly", func(t *testing.T) {
		g := newTestGame(t, 3, nil)
		enter(t, g, StateSelectAction)
		g.Players[0].Cards[board.CardMonopoly] = 1
		grant(t, g, 0, economy.Collection{economy.Wheat: 1})
		grant(t, g, 1, economy.Collection{economy.Wheat: 2, economy.Ore: 1})
		grant(t, g, 2, economy.Collection{economy.Wheat: 3})

		expectCode(t, g.Perform(0, playCard(t, PlayDevelopmentCardData{Card: board.CardMonopoly, Resource: "gold"})), CodeActionDataInvalid)
		if g.Players[0].CardCount(board.CardMonopoly) != 1 {
			t.Fatal("monopoly spent on invalid payload")
		}

		mustPerform(t, g, 0, playCard(t, PlayDevelopmentCardData{Card: board.CardMonopoly, Resource: economy.Wheat}))
		if got := g.Players[0].Resources.Count(economy.Wheat); got != 6 {
			t.Errorf("monopolist wheat = %d, want 6", got)
		}
		if g.Players[1].Resources.Count(economy.Wheat)+g.Players[2].Resources.Count(economy.Wheat) != 0 {
			t.Error("opponents kept wheat")
		}
		if g.Players[1].Resources.Count(economy.Ore) != 1 {
			t.Error("monopoly took another kind")
		}
		expectConserved(t, g)
		expectState(t, g, StateSelectAction)
	})

	t.Run("invention", func(t *testing.T) {
		g := newTestGame(t, 2, nil)
		enter(t, g, StateSelectAction)
		g.Players[0].Cards[board.CardInvention] = 2

		expectCode(t, g.Perform(0, playCard(t, PlayDevelopmentCardData{Card: board.CardInvention, ResourceA: economy.Clay})), CodeActionDataInvalid)

		mustPerform(t, g, 0, playCard(t, PlayDevelopmentCardData{Card: board.CardInvention, ResourceA: economy.Clay, ResourceB: economy.Clay}))
		if got := g.Players[0].Resources.Count(economy.Clay); got != 2 {
			t.Errorf("clay = %d, want 2", got)
		}
		expectConserved(t, g)

		g.Bank.Take(economy.Ore)
		expectCode(t, g.Perform(0, playCard(t, PlayDevelopmentCardData{Card: board.CardInvention, ResourceA: economy.Ore, ResourceB: economy.Wheat})), CodeNotEnoughResources)
		if g.Players[0].CardCount(board.CardInvention) != 1 {
			t.Error("invention spent although the bank could not pay")
		}
	})

	t.Run("street construction", func(t *testing.T) {
		g := newTestGame(t, 2, nil)
		enter(t, g, StateSelectAction)
		c0 := freeCorner(t, g)
		build(t, g, 0, c0)
		g.Players[0].Cards[board.CardStreetConstruction] = 1

		mustPerform(t, g, 0, playCard(t, PlayDevelopmentCardData{Card: board.CardStreetConstruction}))
		expectState(t, g, StateBuildNFreeRoads)
		if got := g.Snapshot().FreeRoads; got != FreeRoads {
			t.Fatalf("free roads = %d", got)
		}

		roads := g.Board.Graph.CornerRoads(c0)
		expectCode(t, g.Perform(0, act(t, ActionEndTurn, nil)), CodeActionNotAllowed)
		expectCode(t, g.Perform(1, act(t, ActionBuildRoad, PlaceRoadData{RoadID: roads[0].ID})), CodeNotPlayerTurn)

		mustPerform(t, g, 0, act(t, ActionBuildRoad, PlaceRoadData{RoadID: roads[0].ID}))
		expectState(t, g, StateBuildNFreeRoads)
		expectCode(t, g.Perform(0, act(t, ActionBuildRoad, PlaceRoadData{RoadID: roads[0].ID})), CodeInvalidLocation)
		mustPerform(t, g, 0, act(t, ActionBuildRoad, PlaceRoadData{RoadID: roads[1].ID}))
		expectState(t, g, StateSelectAction)

		if len(g.Board.Graph.PlayerRoads(0)) != 2 || g.Players[0].Resources.Total() != 0 {
			t.Error("free roads were not free")
		}
	})

	t.Run("street construction without room", func(t *testing.T) {
		g := newTestGame(t, 2, nil)
		enter(t, g, StateSelectAction)
		g.Players[0].Cards[board.CardStreetConstruction] = 1

		expectCode(t, g.Perform(0, playCard(t, PlayDevelopmentCardData{Card: board.CardStreetConstruction})), CodeActionNotAllowed)
		expectState(t, g, StateSelectAction)
		if g.Players[0].CardCount(board.CardStreetConstruction) != 1 {
			t.Error("card spent although no road could be built")
		}
	})

	t.Run("street construction with one road left", func(t *testing.T) {
		g := newTestGame(t, 2, nil)
		enter(t, g, StateSelectAction)
		graph := g.Board.Graph

		c0 := freeCorner(t, g)
		build(t, g, 0, c0)
		roads := graph.CornerRoads(c0)
		open := roads[0]
		for _, r := range roads[1:] {
			if err := graph.ClaimRoad(r.ID, 1); err != nil {
				t.Fatal(err)
			}
		}
		if got := g.legalRoadCount(0); got != 1 {
			t.Fatalf("legal roads = %d, want 1", got)
		}

		g.Players[0].Cards[board.CardStreetConstruction] = 1
		mustPerform(t, g, 0, playCard(t, PlayDevelopmentCardData{Card: board.CardStreetConstruction}))
		expectState(t, g, StateBuildNFreeRoads)
		if got := g.Snapshot().FreeRoads; got != 1 {
			t.Fatalf("free roads = %d, want 1", got)
		}
		mustPerform(t, g, 0, act(t, ActionBuildRoad, PlaceRoadData{RoadID: open.ID}))
		expectState(t, g, StateSelectAction)
		mustPerform(t, g, 0, act(t, ActionEndTurn, nil))
	})
}

func TestPlaceRobber(t *testing.T) {
	tile := board.NewCoord(1, 0)
	g := newTestGame(t, 3, nil)
	build(t, g, 1, g.Board.Map.Get(tile).Corners[0])
	enter(t, g, StateRobberRelocate)

	place := func(tile board.Coord, victim *int) Action {
		return act(t, ActionPlaceRobber, PlaceRobberData{TileLocation: tile, RobbedPlayerID: victim})
	}

	expectCode(t, g.Perform(1, place(tile, intPtr(1))), CodeNotPlayerTurn)
	expectCode(t, g.Perform(0, place(board.Coord{}, nil)), CodeInvalidLocation)
	expectCode(t, g.Perform(0, place(board.NewCoord(9, -9), nil)), CodeInvalidLocation)
	expectCode(t, g.Perform(0, place(board.Coord{Q: 1, R: 1, S: 1}, nil)), CodeActionDataInvalid)
	expectCode(t, g.Perform(0, place(tile, intPtr(1))), CodeActionFailed)

	grant(t, g, 1, economy.Collection{economy.Wheat: 1})
	expectCode(t, g.Perform(0, place(tile, nil)), CodeActionDataInvalid)
	expectCode(t, g.Perform(0, place(tile, intPtr(0))), CodeActionNotAllowed)
	expectCode(t, g.Perform(0, place(tile, intPtr(2))), CodeActionFailed)
	expectCode(t, g.Perform(0, place(tile, intPtr(7))), CodeActionFailed)
	if g.Board.Robber != (board.Coord{}) {
		t.Fatal("robber moved on a failed action")
	}

	mustPerform(t, g, 0, place(tile, intPtr(1)))
	expectState(t, g, StateSelectAction)
	if g.Board.Robber != tile {
		t.Errorf("robber at %v", g.Board.Robber)
	}
	if g.Players[0].Resources.Count(economy.Wheat) != 1 || g.Players[1].Resources.Total() != 0 {
		t.Errorf("steal moved %s / %s", g.Players[0].Resources.Snapshot(), g.Players[1].Resources.Snapshot())
	}
	expectConserved(t, g)

	// Nobody to rob on an empty tile.
	enter(t, g, StateRobberRelocate)
	mustPerform(t, g, 0, place(board.NewCoord(-1, 0), nil))
	expectState(t, g, StateSelectAction)
}

func TestStealablePicksHeldUnits(t *testing.T) {
	l := economy.NewLedger()
	l.AddAll(economy.Collection{economy.Clay: 1, economy.Ore: 2})
	want := []economy.Resource{economy.Clay, economy.Ore, economy.Ore}
	rng := entropy.NewScript(nil, 0, 1, 2)
	for i, w := range want {
		if got := stealable(l, rng); got != w {
			t.Errorf("pick %d = %s, want %s", i, got, w)
		}
	}
}
