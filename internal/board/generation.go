// Board generation: tile layout, resource and dice assignment, the settlement
// graph, seaports and the development deck.
package board

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"
	"golang.org/x/exp/slices"

	"github.com/vgerber/settler-island-server/internal/economy"
	"github.com/vgerber/settler-island-server/internal/entropy"
)

// GenConfig holds board generation parameters.
type GenConfig struct {
	Size           int                      // Ring size; coordinates with max(|q|,|r|,|s|) < Size are playable
	ResourceCounts map[economy.Resource]int // Resource tiles per kind
	DiceValues     []int                    // One chip per resource tile
	CardCounts     map[DevelopmentCard]int  // Development deck composition
	GenericPorts   int                      // 3:1 seaports; one 2:1 port per resource kind is added
}

// DefaultGenConfig returns the reference 19-tile board.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Size: 3,
		ResourceCounts: map[economy.Resource]int{
			economy.Clay:  3,
			economy.Wood:  4,
			economy.Ore:   3,
			economy.Sheep: 4,
			economy.Wheat: 4,
		},
		DiceValues: []int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12},
		CardCounts: map[DevelopmentCard]int{
			CardKnight:             14,
			CardInvention:          2,
			CardStreetConstruction: 2,
			CardMonopoly:           2,
			CardVictoryPoint:       5,
		},
		GenericPorts: 4,
	}
}

// GenConfigForSize returns DefaultGenConfig for size 3. Other sizes deal
// resources round-robin and cycle through the reference dice values.
func GenConfigForSize(size int) GenConfig {
	cfg := DefaultGenConfig()
	if size == cfg.Size || size < 2 {
		return cfg
	}

	tiles := 3 * size * (size - 1)
	counts := make(map[economy.Resource]int, len(economy.Resources))
	dice := make([]int, 0, tiles)
	for i := 0; i < tiles; i++ {
		counts[economy.Resources[i%len(economy.Resources)]]++
		dice = append(dice, cfg.DiceValues[i%len(cfg.DiceValues)])
	}
	cfg.Size = size
	cfg.ResourceCounts = counts
	cfg.DiceValues = dice
	return cfg
}

// Generate builds a complete board. The result is only returned once every
// step succeeded.
func Generate(cfg GenConfig, rng entropy.Source) (*Board, error) {
	if cfg.Size < 2 {
		return nil, fmt.Errorf("board size %d too small, need at least 2", cfg.Size)
	}

	m := layoutTiles(cfg.Size)

	if err := assignResources(m, cfg.ResourceCounts, rng); err != nil {
		return nil, fmt.Errorf("assign resources: %w", err)
	}

	chips, err := assignDiceChips(m, cfg.DiceValues, rng)
	if err != nil {
		return nil, fmt.Errorf("assign dice chips: %w", err)
	}

	shadeElevation(m, int64(rng.Intn(1<<31-1)))

	g, err := buildGraph(m)
	if err != nil {
		return nil, fmt.Errorf("build settlement graph: %w", err)
	}

	if err := placeSeaports(g, seaportContracts(cfg.GenericPorts), rng); err != nil {
		return nil, fmt.Errorf("place seaports: %w", err)
	}

	deck, err := buildDeck(cfg.CardCounts, rng)
	if err != nil {
		return nil, fmt.Errorf("build development deck: %w", err)
	}

	return &Board{
		Map:    m,
		Graph:  g,
		Chips:  chips,
		Robber: Coord{},
		Deck:   deck,
	}, nil
}

// layoutTiles fills the ring; the origin is the filler tile.
func layoutTiles(size int) *Map {
	m := NewMap(size)
	for q := -size + 1; q < size; q++ {
		for r := -size + 1; r < size; r++ {
			c := NewCoord(q, r)
			if !m.InBounds(c) {
				continue
			}
			kind := TileResource
			if c == (Coord{}) {
				kind = TileFiller
			}
			// Coordinates are unique by construction.
			_ = m.Add(&Tile{Coord: c, Kind: kind})
		}
	}
	return m
}

func resourceTiles(m *Map) []*Tile {
	var out []*Tile
	for _, c := range m.Coords() {
		if t := m.Get(c); t.Kind == TileResource {
			out = append(out, t)
		}
	}
	return out
}

func assignResources(m *Map, counts map[economy.Resource]int, rng entropy.Source) error {
	var pool []economy.Resource
	for _, r := range economy.Resources {
		for i := 0; i < counts[r]; i++ {
			pool = append(pool, r)
		}
	}
	tiles := resourceTiles(m)
	if len(pool) != len(tiles) {
		return fmt.Errorf("%d resources for %d resource tiles", len(pool), len(tiles))
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	for i, t := range tiles {
		t.Resource = pool[i]
	}
	return nil
}

func assignDiceChips(m *Map, values []int, rng entropy.Source) ([]DiceChip, error) {
	tiles := resourceTiles(m)
	if len(values) != len(tiles) {
		return nil, fmt.Errorf("%d dice values for %d resource tiles", len(values), len(tiles))
	}
	pool := slices.Clone(values)
	for _, v := range pool {
		if v < 2 || v > 12 || v == 7 {
			return nil, fmt.Errorf("dice value %d cannot be placed", v)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	chips := make([]DiceChip, len(tiles))
	for i, t := range tiles {
		chips[i] = DiceChip{Value: pool[i], Tile: t.Coord}
	}
	return chips, nil
}

// shadeElevation gives every tile a cosmetic height from layered simplex noise.
func shadeElevation(m *Map, seed int64) {
	noise := opensimplex.NewNormalized(seed)
	for _, t := range m.Tiles {
		x, y := t.Coord.Center()
		elev := octaveNoise(noise, x, y, 3, 0.35, 0.5)
		t.Elevation = min(max(elev, 0), 1)
	}
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// buildGraph derives corners from every triple of a tile and two adjacent
// neighbours, then joins consecutive corners of each tile with a road.
func buildGraph(m *Map) (*SettlementGraph, error) {
	g := NewSettlementGraph()

	for _, coord := range m.Coords() {
		tile := m.Get(coord)
		for i := range Directions {
			a := coord.Add(Directions[i])
			b := coord.Add(Directions[(i+1)%len(Directions)])
			id := CornerIDFor(coord, a, b)
			if !g.HasCorner(id) {
				members := []Coord{coord, a, b}
				slices.SortFunc(members, compareCoords)
				corner := &Corner{ID: id}
				copy(corner.Tiles[:], members)
				for _, mc := range members {
					if !m.InBounds(mc) {
						corner.Coastal = true
					}
				}
				if err := g.AddCorner(corner); err != nil {
					return nil, err
				}
			}
			if err := tile.addCorner(id); err != nil {
				return nil, err
			}
		}

		for i, id := range tile.Corners {
			next := tile.Corners[(i+1)%len(tile.Corners)]
			if _, ok := g.RoadBetween(id, next); ok {
				continue
			}
			road := &Road{ID: RoadIDFor(id, next), A: id, B: next}
			if err := g.AddRoad(road); err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}

func buildDeck(counts map[DevelopmentCard]int, rng entropy.Source) (*Deck, error) {
	var cards []DevelopmentCard
	for _, c := range DevelopmentCards {
		for i := 0; i < counts[c]; i++ {
			cards = append(cards, c)
		}
	}
	for c := range counts {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid development card %q", c)
		}
	}
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	return NewDeck(cards)
}
