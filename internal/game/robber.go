package game

import (
	"golang.org/x/exp/slices"

	"github.com/vgerber/settler-island-server/internal/board"
	"github.com/vgerber/settler-island-server/internal/economy"
	"github.com/vgerber/settler-island-server/internal/entropy"
)

// robberRemoveCards makes every player over the hand limit discard down to
// exactly MaxHandSize. Any player may act, in any order.
type robberRemoveCards struct{}

func (*robberRemoveCards) ID() StateID    { return StateRobberRemoveCards }
func (*robberRemoveCards) activate(*Game) {}

func (s *robberRemoveCards) perform(g *Game, player int, a Action) error {
	if a.ID != ActionRemoveCards {
		return reject(ErrActionNotAllowed, "%s in %s", a.ID, s.ID())
	}

	p := g.Players[player]
	if !p.OverHandLimit() {
		return reject(ErrActionNotAllowed, "player %d holds %d resources, nothing to discard", player, p.Resources.Total())
	}
	discard, err := decodeCollection(a)
	if err != nil {
		return err
	}
	if want := p.Resources.Total() - MaxHandSize; discard.Total() != want {
		return reject(ErrActionFailed, "player %d must discard %d resources, not %d", player, want, discard.Total())
	}
	if !p.Resources.HasAll(discard) {
		return reject(ErrNotEnoughResources, "player %d cannot discard %s from %s", player, discard, p.Resources.Snapshot())
	}
	if err := g.Bank.Collect(p.Resources, discard); err != nil {
		return reject(ErrActionFailed, "%v", err)
	}

	if g.AnyOverHandLimit() {
		return nil
	}
	return g.transition(StateRobberRelocate)
}

// robberRelocate lets the turn holder move the robber and steal one unit from
// a player settled on the new tile.
type robberRelocate struct{}

func (*robberRelocate) ID() StateID    { return StateRobberRelocate }
func (*robberRelocate) activate(*Game) {}

func (s *robberRelocate) perform(g *Game, player int, a Action) error {
	if !g.IsPlayerTurn(player) {
		return reject(ErrNotPlayerTurn, "player %d, turn of %d", player, g.current)
	}
	if a.ID != ActionPlaceRobber {
		return reject(ErrActionNotAllowed, "%s in %s", a.ID, s.ID())
	}

	var data PlaceRobberData
	if err := decode(a, &data); err != nil {
		return err
	}
	target := data.TileLocation
	if !target.Valid() {
		return reject(ErrActionDataInvalid, "tile %s violates q+r+s=0", target)
	}
	if g.Board.Map.Get(target) == nil {
		return reject(ErrInvalidLocation, "tile %s not found", target)
	}
	if target == g.Board.Robber {
		return reject(ErrInvalidLocation, "robber already on %s", target)
	}

	victim, err := s.victim(g, player, target, data.RobbedPlayerID)
	if err != nil {
		return err
	}

	if err := g.Board.MoveRobber(target); err != nil {
		return reject(ErrActionFailed, "%v", err)
	}
	if victim != nil {
		r := stealable(victim.Resources, g.rng)
		if err := economy.Transfer(victim.Resources, g.Players[player].Resources, economy.Collection{r: 1}); err != nil {
			return reject(ErrActionFailed, "%v", err)
		}
	}
	return g.transition(StateSelectAction)
}

// victim resolves the robbed player. nil means nobody is robbed.
func (s *robberRelocate) victim(g *Game, player int, tile board.Coord, requested *int) (*Player, error) {
	owners := g.Board.TileOwners(tile)

	if requested == nil {
		for _, id := range owners {
			if id != player && g.Players[id].Resources.Total() > 0 {
				return nil, reject(ErrActionDataInvalid, "robbed_player_id required, player %d can be robbed on %s", id, tile)
			}
		}
		return nil, nil
	}

	id := *requested
	switch {
	case id == player:
		return nil, reject(ErrActionNotAllowed, "player %d cannot rob themselves", player)
	case id < 0 || id >= len(g.Players):
		return nil, reject(ErrActionFailed, "unknown player %d", id)
	}

	if !slices.Contains(owners, id) {
		return nil, reject(ErrActionFailed, "player %d has no settlement on %s", id, tile)
	}
	if g.Players[id].Resources.Total() == 0 {
		return nil, reject(ErrActionFailed, "player %d has no resources to steal", id)
	}
	return g.Players[id], nil
}

// stealable picks one held unit uniformly. The ledger must not be empty.
func stealable(l *economy.Ledger, rng entropy.Source) economy.Resource {
	pick := rng.Intn(l.Total())
	for _, r := range economy.Resources {
		n := l.Count(r)
		if pick < n {
			return r
		}
		pick -= n
	}
	return economy.Resources[len(economy.Resources)-1]
}
