package game

// buildFreeRoads grants up to total roads without cost, then returns to the
// action phase. The grant shrinks to the roads the player can still reach.
type buildFreeRoads struct {
	total int
	left  int
}

func (*buildFreeRoads) ID() StateID { return StateBuildNFreeRoads }

func (s *buildFreeRoads) activate(g *Game) {
	s.left = min(s.total, g.legalRoadCount(g.current))
}

// Left returns the number of free roads still to place.
func (s *buildFreeRoads) Left() int { return s.left }

func (s *buildFreeRoads) perform(g *Game, player int, a Action) error {
	if !g.IsPlayerTurn(player) {
		return reject(ErrNotPlayerTurn, "player %d, turn of %d", player, g.current)
	}
	if a.ID != ActionBuildRoad {
		return reject(ErrActionNotAllowed, "%s in %s", a.ID, s.ID())
	}
	if s.left == 0 {
		return reject(ErrActionFailed, "player %d has no free roads left", player)
	}

	var data PlaceRoadData
	if err := decode(a, &data); err != nil {
		return err
	}
	if err := g.CanBuildRoad(player, data.RoadID); err != nil {
		return err
	}
	if err := g.Board.Graph.ClaimRoad(data.RoadID, player); err != nil {
		return reject(ErrActionFailed, "%v", err)
	}

	s.left--
	if s.left > 0 && g.legalRoadCount(player) > 0 {
		return nil
	}
	s.left = 0
	return g.transition(StateSelectAction)
}
