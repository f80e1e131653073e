package game

import "github.com/vgerber/settler-island-server/internal/board"

// Settlements every player places during the opening.
const openingSettlements = 2

// startVillagePlacement accepts a free village during the opening.
type startVillagePlacement struct{}

func (*startVillagePlacement) ID() StateID      { return StateStartVillagePlacement }
func (*startVillagePlacement) activate(g *Game) { g.placed = "" }

func (s *startVillagePlacement) perform(g *Game, player int, a Action) error {
	if !g.IsPlayerTurn(player) {
		return reject(ErrNotPlayerTurn, "player %d, turn of %d", player, g.current)
	}
	switch a.ID {
	case ActionBuildSettlement:
		return s.placeVillage(g, player, a)
	default:
		return reject(ErrActionNotAllowed, "%s in %s", a.ID, s.ID())
	}
}

func (s *startVillagePlacement) placeVillage(g *Game, player int, a Action) error {
	var data PlaceSettlementData
	if err := decode(a, &data); err != nil {
		return err
	}
	if data.SettlementType == board.BuildingCity {
		return reject(ErrActionNotAllowed, "only villages can be placed in %s", s.ID())
	}
	if err := g.CanBuildVillage(player, data.SettlementID, false); err != nil {
		return err
	}
	if err := g.Board.Graph.Build(data.SettlementID, board.BuildingVillage, player); err != nil {
		return reject(ErrActionFailed, "%v", err)
	}
	g.placed = data.SettlementID
	return g.transition(StateStartRoadPlacement)
}

// startRoadPlacement accepts the free road attached to the village just
// placed, then passes the turn. The last player places both opening
// settlements before the turn passes back.
type startRoadPlacement struct{}

func (*startRoadPlacement) ID() StateID    { return StateStartRoadPlacement }
func (*startRoadPlacement) activate(*Game) {}

func (s *startRoadPlacement) perform(g *Game, player int, a Action) error {
	if !g.IsPlayerTurn(player) {
		return reject(ErrNotPlayerTurn, "player %d, turn of %d", player, g.current)
	}
	switch a.ID {
	case ActionBuildRoad:
		return s.placeRoad(g, player, a)
	default:
		return reject(ErrActionNotAllowed, "%s in %s", a.ID, s.ID())
	}
}

func (s *startRoadPlacement) placeRoad(g *Game, player int, a Action) error {
	var data PlaceRoadData
	if err := decode(a, &data); err != nil {
		return err
	}
	road, ok := g.Board.Graph.Road(data.RoadID)
	if !ok {
		return reject(ErrInvalidLocation, "road %s not found", data.RoadID)
	}
	if road.Claimed() {
		return reject(ErrInvalidLocation, "road %s already built", data.RoadID)
	}
	if g.placed == "" || !road.Touches(g.placed) {
		return reject(ErrInvalidLocation, "road %s does not touch settlement %s", data.RoadID, g.placed)
	}
	if err := g.Board.Graph.ClaimRoad(data.RoadID, player); err != nil {
		return reject(ErrActionFailed, "%v", err)
	}
	g.placed = ""

	isLast := g.current == len(g.Players)-1
	if !isLast || settlementCount(g, player) >= openingSettlements {
		g.endTurn()
	}

	if allPlayersPlaced(g) {
		return g.transition(StateRollDice)
	}
	return g.transition(StateStartVillagePlacement)
}

func settlementCount(g *Game, player int) int {
	return len(g.Board.Graph.PlayerCorners(player))
}

func allPlayersPlaced(g *Game) bool {
	for _, p := range g.Players {
		if settlementCount(g, p.ID) < openingSettlements {
			return false
		}
	}
	return true
}
