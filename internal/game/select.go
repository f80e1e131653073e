package game

import (
	"github.com/vgerber/settler-island-server/internal/board"
	"github.com/vgerber/settler-island-server/internal/economy"
)

// selectAction is the main phase of a turn after the dice were rolled.
type selectAction struct{}

func (*selectAction) ID() StateID    { return StateSelectAction }
func (*selectAction) activate(*Game) {}

func (s *selectAction) perform(g *Game, player int, a Action) error {
	if !g.IsPlayerTurn(player) {
		return reject(ErrNotPlayerTurn, "player %d, turn of %d", player, g.current)
	}
	switch a.ID {
	case ActionBuildSettlement:
		return buildSettlement(g, player, a)
	case ActionBuildRoad:
		return buildRoad(g, player, a)
	case ActionDrawDevelopmentCard:
		return drawDevelopmentCard(g, player)
	case ActionPlayDevelopmentCard:
		return playDevelopmentCard(g, player, a)
	case ActionEndTurn:
		g.endTurn()
		return g.transition(StateRollDice)
	case ActionOfferTrade:
		if err := offerTrade(g, player, a); err != nil {
			return err
		}
		return g.transition(StateTrading)
	case ActionOfferBankTrade:
		return bankTrade(g, player, a)
	default:
		return reject(ErrActionNotAllowed, "%s in %s", a.ID, s.ID())
	}
}

func buildSettlement(g *Game, player int, a Action) error {
	var data PlaceSettlementData
	if err := decode(a, &data); err != nil {
		return err
	}

	var cost economy.Collection
	switch data.SettlementType {
	case board.BuildingVillage:
		cost = economy.VillageCost()
	case board.BuildingCity:
		cost = economy.CityCost()
	default:
		return reject(ErrActionDataInvalid, "missing settlement_type")
	}

	p := g.Players[player]
	if !p.Resources.HasAll(cost) {
		return reject(ErrNotEnoughResources, "%s costs %s, player %d has %s", data.SettlementType, cost, player, p.Resources.Snapshot())
	}

	var err error
	if data.SettlementType == board.BuildingCity {
		err = g.CanBuildCity(player, data.SettlementID)
	} else {
		err = g.CanBuildVillage(player, data.SettlementID, true)
	}
	if err != nil {
		return err
	}

	if err := g.pay(p, cost); err != nil {
		return err
	}
	if err := g.Board.Graph.Build(data.SettlementID, data.SettlementType, player); err != nil {
		return reject(ErrActionFailed, "%v", err)
	}
	return nil
}

func buildRoad(g *Game, player int, a Action) error {
	var data PlaceRoadData
	if err := decode(a, &data); err != nil {
		return err
	}

	p := g.Players[player]
	cost := economy.RoadCost()
	if !p.Resources.HasAll(cost) {
		return reject(ErrNotEnoughResources, "road costs %s, player %d has %s", cost, player, p.Resources.Snapshot())
	}
	if err := g.CanBuildRoad(player, data.RoadID); err != nil {
		return err
	}

	if err := g.pay(p, cost); err != nil {
		return err
	}
	if err := g.Board.Graph.ClaimRoad(data.RoadID, player); err != nil {
		return reject(ErrActionFailed, "%v", err)
	}
	return nil
}
