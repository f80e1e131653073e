package game

import (
	"github.com/vgerber/settler-island-server/internal/board"
	"github.com/vgerber/settler-island-server/internal/economy"
)

func drawDevelopmentCard(g *Game, player int) error {
	p := g.Players[player]
	cost := economy.DevelopmentCardCost()
	if !p.Resources.HasAll(cost) {
		return reject(ErrNotEnoughResources, "development card costs %s, player %d has %s", cost, player, p.Resources.Snapshot())
	}
	if g.Board.Deck.Remaining() == 0 {
		return reject(ErrActionFailed, "development deck is empty")
	}

	if err := g.pay(p, cost); err != nil {
		return err
	}
	card, _ := g.Board.Deck.Draw()
	p.Cards[card]++
	return nil
}

// playDevelopmentCard validates the whole payload before the card is spent.
func playDevelopmentCard(g *Game, player int, a Action) error {
	var data PlayDevelopmentCardData
	if err := decode(a, &data); err != nil {
		return err
	}
	if !data.Card.Valid() {
		return reject(ErrActionDataInvalid, "unknown development card %q", data.Card)
	}
	if data.Card == board.CardVictoryPoint {
		return reject(ErrActionNotAllowed, "%s cards cannot be played", data.Card)
	}

	p := g.Players[player]
	if p.CardCount(data.Card) == 0 {
		return reject(ErrNotEnoughResources, "player %d holds no %s card", player, data.Card)
	}

	switch data.Card {
	case board.CardKnight:
		if err := p.spendCard(data.Card); err != nil {
			return err
		}
		return g.transition(StateRobberRelocate)

	case board.CardStreetConstruction:
		if g.legalRoadCount(player) == 0 {
			return reject(ErrActionNotAllowed, "player %d has nowhere to build a road", player)
		}
		if err := p.spendCard(data.Card); err != nil {
			return err
		}
		return g.transition(StateBuildNFreeRoads)

	case board.CardMonopoly:
		if !data.Resource.Valid() {
			return reject(ErrActionDataInvalid, "monopoly needs a resource, got %q", data.Resource)
		}
		if err := p.spendCard(data.Card); err != nil {
			return err
		}
		taken := 0
		for _, other := range g.Players {
			if other.ID != player {
				taken += other.Resources.Take(data.Resource)
			}
		}
		p.Resources.Add(data.Resource, taken)
		return nil

	case board.CardInvention:
		if !data.ResourceA.Valid() || !data.ResourceB.Valid() {
			return reject(ErrActionDataInvalid, "invention needs two resources, got %q and %q", data.ResourceA, data.ResourceB)
		}
		grant := economy.Collection{data.ResourceA: 1}
		grant[data.ResourceB]++
		if !g.Bank.HasAll(grant) {
			return reject(ErrNotEnoughResources, "bank cannot supply %s", grant)
		}
		if err := p.spendCard(data.Card); err != nil {
			return err
		}
		if err := g.Bank.Pay(p.Resources, grant); err != nil {
			return reject(ErrActionFailed, "%v", err)
		}
		return nil
	}

	return reject(ErrActionNotAllowed, "%s cards cannot be played", data.Card)
}
