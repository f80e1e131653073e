package game

import (
	"fmt"

	"github.com/vgerber/settler-island-server/internal/economy"
)

// TradeOffer is the single open player-to-player offer of a game. Offer is
// what the creator gives, Receive what the creator wants back.
type TradeOffer struct {
	Creator   int
	Offer     economy.Collection
	Receive   economy.Collection
	Responses map[int]bool // invitee -> accepted
}

// NewTradeOffer invites every listed player. The creator cannot invite
// themselves.
func NewTradeOffer(creator int, offer, receive economy.Collection, invitees []int) *TradeOffer {
	responses := make(map[int]bool, len(invitees))
	for _, id := range invitees {
		if id == creator {
			panic(fmt.Sprintf("game: trade creator %d listed as invitee", creator))
		}
		responses[id] = false
	}
	return &TradeOffer{
		Creator:   creator,
		Offer:     offer.Clone(),
		Receive:   receive.Clone(),
		Responses: responses,
	}
}

// IsInvitee reports whether player may answer the offer.
func (o *TradeOffer) IsInvitee(player int) bool {
	_, ok := o.Responses[player]
	return ok
}

// Accepted reports whether player accepted the offer.
func (o *TradeOffer) Accepted(player int) bool {
	return o.Responses[player]
}

func (o *TradeOffer) respond(player int, accept bool) error {
	if !o.IsInvitee(player) {
		return reject(ErrActionNotAllowed, "player %d is not invited to the trade", player)
	}
	o.Responses[player] = accept
	return nil
}
