package game

import (
	"github.com/vgerber/settler-island-server/internal/board"
	"github.com/vgerber/settler-island-server/internal/economy"
)

// MaxHandSize is the largest hand a player keeps when a 7 is rolled.
const MaxHandSize = 7

var playerColors = []string{"#c0392b", "#2980b9", "#f1c40f", "#27ae60", "#8e44ad", "#e67e22"}

// Player is a seat in the game. ID is the index into Game.Players.
type Player struct {
	ID        int
	Color     string
	Resources *economy.Ledger
	Cards     map[board.DevelopmentCard]int
}

func newPlayer(id int) *Player {
	return &Player{
		ID:        id,
		Color:     playerColors[id%len(playerColors)],
		Resources: economy.NewLedger(),
		Cards:     make(map[board.DevelopmentCard]int),
	}
}

// CardCount returns how many cards of kind c the player holds.
func (p *Player) CardCount(c board.DevelopmentCard) int {
	return p.Cards[c]
}

// OverHandLimit reports whether the player must discard on a 7.
func (p *Player) OverHandLimit() bool {
	return p.Resources.Total() > MaxHandSize
}

func (p *Player) spendCard(c board.DevelopmentCard) error {
	if p.Cards[c] == 0 {
		return reject(ErrNotEnoughResources, "player %d holds no %s card", p.ID, c)
	}
	p.Cards[c]--
	return nil
}
