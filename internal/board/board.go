package board

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/vgerber/settler-island-server/internal/economy"
)

// DiceChip assigns a dice value to a resource tile.
type DiceChip struct {
	Value int   `json:"value"`
	Tile  Coord `json:"tile"`
}

// Board holds the complete generated board state.
type Board struct {
	Map    *Map
	Graph  *SettlementGraph
	Chips  []DiceChip
	Robber Coord
	Deck   *Deck
}

// DiceValue returns the chip value on a tile, if any.
func (b *Board) DiceValue(c Coord) (int, bool) {
	for _, chip := range b.Chips {
		if chip.Tile == c {
			return chip.Value, true
		}
	}
	return 0, false
}

// TilesByDiceValue returns the tiles carrying a chip with the given value.
func (b *Board) TilesByDiceValue(value int) []*Tile {
	var out []*Tile
	for _, chip := range b.Chips {
		if chip.Value != value {
			continue
		}
		if t := b.Map.Get(chip.Tile); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// MoveRobber relocates the robber to another existing tile.
func (b *Board) MoveRobber(c Coord) error {
	if b.Map.Get(c) == nil {
		return fmt.Errorf("robber target %s: no such tile", c)
	}
	if c == b.Robber {
		return fmt.Errorf("robber already on %s", c)
	}
	b.Robber = c
	return nil
}

// TileOwners returns the distinct owners of settlements around a tile in
// ascending order.
func (b *Board) TileOwners(c Coord) []int {
	t := b.Map.Get(c)
	if t == nil {
		return nil
	}
	var owners []int
	for _, id := range t.Corners {
		corner, ok := b.Graph.Corner(id)
		if !ok || corner.Settlement == nil {
			continue
		}
		if !slices.Contains(owners, corner.Settlement.Owner) {
			owners = append(owners, corner.Settlement.Owner)
		}
	}
	slices.Sort(owners)
	return owners
}

// PlayerContracts returns the bank contract followed by the seaport
// contracts of every corner owned by player.
func (b *Board) PlayerContracts(player int) []economy.Contract {
	contracts := []economy.Contract{economy.BankContract}
	for _, c := range b.Graph.PlayerCorners(player) {
		if c.Port != nil && c.Port.Contract != nil {
			contracts = append(contracts, c.Port.Contract)
		}
	}
	return contracts
}
