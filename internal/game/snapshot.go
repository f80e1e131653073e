package game

import (
	"github.com/vgerber/settler-island-server/internal/board"
	"github.com/vgerber/settler-island-server/internal/economy"
)

// Snapshot is the read-only view of a game forwarded to clients. All slices
// are in a stable order.
type Snapshot struct {
	State         StateID            `json:"state"`
	CurrentPlayer int                `json:"current_player"`
	LastRoll      *DiceRoll          `json:"last_roll,omitempty"`
	Robber        board.Coord        `json:"robber"`
	FreeRoads     int                `json:"free_roads,omitempty"`
	Pending       board.CornerID     `json:"pending_settlement,omitempty"`
	Tiles         []TileView         `json:"tiles"`
	Corners       []CornerView       `json:"corners"`
	Roads         []RoadView         `json:"roads"`
	Players       []PlayerView       `json:"players"`
	Offer         *OfferView         `json:"offer,omitempty"`
	Bank          economy.Collection `json:"bank"`
	DeckRemaining int                `json:"deck_remaining"`
}

type TileView struct {
	Coord     board.Coord      `json:"coord"`
	Kind      string           `json:"kind"`
	Resource  economy.Resource `json:"resource,omitempty"`
	DiceValue int              `json:"dice_value,omitempty"`
	Elevation float64          `json:"elevation"`
}

type CornerView struct {
	ID       board.CornerID `json:"id"`
	Coastal  bool           `json:"coastal"`
	Owner    *int           `json:"owner,omitempty"`
	Building string         `json:"building,omitempty"`
	Port     string         `json:"port,omitempty"`
}

type RoadView struct {
	ID    board.RoadID   `json:"id"`
	A     board.CornerID `json:"a"`
	B     board.CornerID `json:"b"`
	Owner *int           `json:"owner,omitempty"`
}

type PlayerView struct {
	ID             int                           `json:"id"`
	Color          string                        `json:"color"`
	Resources      economy.Collection            `json:"resources"`
	Cards          map[board.DevelopmentCard]int `json:"cards"`
	TotalResources int                           `json:"total_resources"`
}

type OfferView struct {
	Creator   int                `json:"creator"`
	Offer     economy.Collection `json:"offer"`
	Receive   economy.Collection `json:"receive"`
	Responses map[int]bool       `json:"responses"`
}

// Snapshot copies the current game state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		State:         g.State(),
		CurrentPlayer: g.current,
		Robber:        g.Board.Robber,
		Pending:       g.placed,
		Bank:          g.Bank.Snapshot(),
		DeckRemaining: g.Board.Deck.Remaining(),
	}
	if g.lastRoll != nil {
		roll := *g.lastRoll
		s.LastRoll = &roll
	}
	if free, ok := g.machine.current.(*buildFreeRoads); ok {
		s.FreeRoads = free.Left()
	}

	for _, c := range g.Board.Map.Coords() {
		t := g.Board.Map.Get(c)
		value, _ := g.Board.DiceValue(c)
		s.Tiles = append(s.Tiles, TileView{
			Coord:     c,
			Kind:      t.Kind.String(),
			Resource:  t.Resource,
			DiceValue: value,
			Elevation: t.Elevation,
		})
	}

	for _, c := range g.Board.Graph.Corners() {
		v := CornerView{ID: c.ID, Coastal: c.Coastal}
		if c.Settlement != nil {
			owner := c.Settlement.Owner
			v.Owner = &owner
			v.Building = c.Settlement.Building.String()
		}
		if c.Port != nil && c.Port.Contract != nil {
			v.Port = c.Port.Contract.String()
		}
		s.Corners = append(s.Corners, v)
	}

	for _, r := range g.Board.Graph.Roads() {
		v := RoadView{ID: r.ID, A: r.A, B: r.B}
		if r.Owner != nil {
			owner := *r.Owner
			v.Owner = &owner
		}
		s.Roads = append(s.Roads, v)
	}

	for _, p := range g.Players {
		cards := make(map[board.DevelopmentCard]int, len(p.Cards))
		for c, n := range p.Cards {
			if n > 0 {
				cards[c] = n
			}
		}
		s.Players = append(s.Players, PlayerView{
			ID:             p.ID,
			Color:          p.Color,
			Resources:      p.Resources.Snapshot(),
			Cards:          cards,
			TotalResources: p.Resources.Total(),
		})
	}

	if o := g.offer; o != nil {
		responses := make(map[int]bool, len(o.Responses))
		for id, ok := range o.Responses {
			responses[id] = ok
		}
		s.Offer = &OfferView{
			Creator:   o.Creator,
			Offer:     o.Offer.Clone(),
			Receive:   o.Receive.Clone(),
			Responses: responses,
		}
	}
	return s
}
