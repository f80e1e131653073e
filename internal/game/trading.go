package game

import "github.com/vgerber/settler-island-server/internal/economy"

// trading holds an open player offer. The turn holder may revise, complete
// or cancel it; everyone else answers it.
type trading struct{}

func (*trading) ID() StateID    { return StateTrading }
func (*trading) activate(*Game) {}

func (s *trading) perform(g *Game, player int, a Action) error {
	if g.IsPlayerTurn(player) {
		switch a.ID {
		case ActionOfferTrade:
			return offerTrade(g, player, a)
		case ActionOfferBankTrade:
			return bankTrade(g, player, a)
		case ActionCompleteTrade:
			return completeTrade(g, a)
		case ActionCancelTrade:
			g.offer = nil
			return g.transition(StateSelectAction)
		default:
			return reject(ErrActionNotAllowed, "%s in %s", a.ID, s.ID())
		}
	}

	switch a.ID {
	case ActionOfferTrade, ActionOfferBankTrade, ActionCompleteTrade, ActionCancelTrade:
		return reject(ErrNotPlayerTurn, "player %d, turn of %d", player, g.current)
	case ActionAcceptTrade:
		return acceptTrade(g, player)
	case ActionRejectTrade:
		if g.offer == nil {
			return reject(ErrActionFailed, "no open trade offer")
		}
		return g.offer.respond(player, false)
	default:
		return reject(ErrActionNotAllowed, "%s in %s", a.ID, s.ID())
	}
}

// offerTrade opens or replaces the game's single offer.
func offerTrade(g *Game, player int, a Action) error {
	data, err := decodeTradeOffer(a)
	if err != nil {
		return err
	}
	p := g.Players[player]
	if !p.Resources.HasAll(data.ResourceOffer) {
		return reject(ErrNotEnoughResources, "player %d cannot offer %s", player, data.ResourceOffer)
	}

	invitees := make([]int, 0, len(g.Players)-1)
	for _, other := range g.Players {
		if other.ID != player {
			invitees = append(invitees, other.ID)
		}
	}
	g.offer = NewTradeOffer(player, data.ResourceOffer, data.ResourceReceive, invitees)
	return nil
}

func acceptTrade(g *Game, player int) error {
	if g.offer == nil {
		return reject(ErrActionFailed, "no open trade offer")
	}
	if !g.offer.IsInvitee(player) {
		return reject(ErrActionNotAllowed, "player %d is not invited to the trade", player)
	}
	if !g.Players[player].Resources.HasAll(g.offer.Receive) {
		return reject(ErrNotEnoughResources, "player %d cannot provide %s", player, g.offer.Receive)
	}
	return g.offer.respond(player, true)
}

// completeTrade swaps resources with one accepting invitee. Both sides are
// checked again since holdings may have changed after the answers.
func completeTrade(g *Game, a Action) error {
	var data CompleteTradeData
	if err := decode(a, &data); err != nil {
		return err
	}
	if data.AcceptedPlayerID == nil {
		return reject(ErrActionDataInvalid, "missing accepted_player_id")
	}
	offer := g.offer
	if offer == nil {
		return reject(ErrActionFailed, "no open trade offer")
	}

	id := *data.AcceptedPlayerID
	if !offer.IsInvitee(id) {
		return reject(ErrActionFailed, "player %d is not part of the trade", id)
	}
	if !offer.Accepted(id) {
		return reject(ErrActionNotAllowed, "player %d did not accept the trade", id)
	}

	creator, partner := g.Players[offer.Creator], g.Players[id]
	if !creator.Resources.HasAll(offer.Offer) {
		return reject(ErrNotEnoughResources, "player %d no longer holds %s", creator.ID, offer.Offer)
	}
	if !partner.Resources.HasAll(offer.Receive) {
		return reject(ErrNotEnoughResources, "player %d no longer holds %s", partner.ID, offer.Receive)
	}

	if err := economy.Transfer(creator.Resources, partner.Resources, offer.Offer); err != nil {
		return reject(ErrActionFailed, "%v", err)
	}
	if err := economy.Transfer(partner.Resources, creator.Resources, offer.Receive); err != nil {
		return reject(ErrActionFailed, "%v", err)
	}

	g.offer = nil
	return g.transition(StateSelectAction)
}

// bankTrade settles immediately against the bank's 4:1 rate or a seaport the
// player has settled.
func bankTrade(g *Game, player int, a Action) error {
	data, err := decodeTradeOffer(a)
	if err != nil {
		return err
	}

	contract, ok := economy.AcceptedBy(g.Board.PlayerContracts(player), data.ResourceReceive, data.ResourceOffer)
	if !ok {
		return reject(ErrActionNotAllowed, "no contract of player %d accepts %s for %s", player, data.ResourceOffer, data.ResourceReceive)
	}
	p := g.Players[player]
	if !p.Resources.HasAll(data.ResourceOffer) {
		return reject(ErrNotEnoughResources, "player %d cannot offer %s", player, data.ResourceOffer)
	}
	if !g.Bank.HasAll(data.ResourceReceive) {
		return reject(ErrNotEnoughResources, "bank cannot supply %s", data.ResourceReceive)
	}

	if err := g.Bank.Collect(p.Resources, data.ResourceOffer); err != nil {
		return reject(ErrActionFailed, "%v", err)
	}
	if err := g.Bank.Pay(p.Resources, data.ResourceReceive); err != nil {
		return reject(ErrActionFailed, "%v", err)
	}
	g.log.Debug("bank trade", "player", player, "contract", contract.String(),
		"offer", data.ResourceOffer.String(), "receive", data.ResourceReceive.String())
	return nil
}
