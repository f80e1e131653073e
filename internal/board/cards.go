package board

import "fmt"

// DevelopmentCard is one of the fixed development card kinds.
type DevelopmentCard string

const (
	CardKnight             DevelopmentCard = "Knight"
	CardInvention          DevelopmentCard = "Invention"
	CardMonopoly           DevelopmentCard = "Monopoly"
	CardStreetConstruction DevelopmentCard = "StreetConstruction"
	CardVictoryPoint       DevelopmentCard = "VictoryPoint"
)

// DevelopmentCards lists every card kind in canonical order.
var DevelopmentCards = [5]DevelopmentCard{
	CardKnight,
	CardInvention,
	CardStreetConstruction,
	CardMonopoly,
	CardVictoryPoint,
}

// Valid reports whether c is a known card kind.
func (c DevelopmentCard) Valid() bool {
	switch c {
	case CardKnight, CardInvention, CardMonopoly, CardStreetConstruction, CardVictoryPoint:
		return true
	default:
		return false
	}
}

// Deck is a shuffled stack of development cards drawn from the end.
type Deck struct {
	cards []DevelopmentCard
}

// NewDeck builds a deck from the given cards. Index len-1 is the top.
func NewDeck(cards []DevelopmentCard) (*Deck, error) {
	for _, c := range cards {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid development card %q", c)
		}
	}
	return &Deck{cards: append([]DevelopmentCard(nil), cards...)}, nil
}

// Draw pops the top card. ok is false when the deck is empty.
func (d *Deck) Draw() (card DevelopmentCard, ok bool) {
	if len(d.cards) == 0 {
		return "", false
	}
	card = d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, true
}

// Remaining returns the number of cards left.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
