package board

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/vgerber/settler-island-server/internal/economy"
)

// TileKind distinguishes resource-producing tiles from filler tiles.
type TileKind uint8

const (
	TileFiller   TileKind = iota // Desert in the middle, yields nothing
	TileResource                 // Yields its resource on a matching roll
)

func (k TileKind) String() string {
	switch k {
	case TileFiller:
		return "filler"
	case TileResource:
		return "resource"
	default:
		return "unknown"
	}
}

// Tile is a single hex on the board.
type Tile struct {
	Coord    Coord            `json:"coord"`
	Kind     TileKind         `json:"kind"`
	Resource economy.Resource `json:"resource,omitempty"`

	// Cosmetic height in [0, 1] for client shading. No rule reads it.
	Elevation float64 `json:"elevation"`

	// Corner ids around the tile, filled once during generation.
	Corners []CornerID `json:"corners"`
}

func (t *Tile) addCorner(id CornerID) error {
	if slices.Contains(t.Corners, id) {
		return fmt.Errorf("corner %s already on tile %s", id, t.Coord)
	}
	t.Corners = append(t.Corners, id)
	return nil
}

// Map holds the playable tiles keyed by coordinate.
type Map struct {
	Tiles map[Coord]*Tile `json:"-"`
	Size  int             `json:"size"`
}

// NewMap creates an empty map. A map of size N holds every coordinate with
// max(|q|, |r|, |s|) < N.
func NewMap(size int) *Map {
	return &Map{
		Tiles: make(map[Coord]*Tile),
		Size:  size,
	}
}

// Get returns the tile at the coordinate, or nil if there is none.
func (m *Map) Get(coord Coord) *Tile {
	return m.Tiles[coord]
}

// Add places a tile; a coordinate can only be filled once.
func (m *Map) Add(tile *Tile) error {
	if !tile.Coord.Valid() {
		return fmt.Errorf("coordinate %s violates q+r+s=0", tile.Coord)
	}
	if _, ok := m.Tiles[tile.Coord]; ok {
		return fmt.Errorf("coordinate %s already blocked", tile.Coord)
	}
	m.Tiles[tile.Coord] = tile
	return nil
}

// InBounds returns true if the coordinate is inside the playable ring.
func (m *Map) InBounds(coord Coord) bool {
	return coord.Valid() && coord.Length() < m.Size
}

// Neighbors returns the existing tiles around coord in Directions order.
func (m *Map) Neighbors(coord Coord) []*Tile {
	var out []*Tile
	for _, n := range coord.Neighbors() {
		if t := m.Get(n); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Coords returns every tile coordinate in a stable order.
func (m *Map) Coords() []Coord {
	coords := make([]Coord, 0, len(m.Tiles))
	for c := range m.Tiles {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, compareCoords)
	return coords
}

// TileCount returns the total number of tiles in the map.
func (m *Map) TileCount() int {
	return len(m.Tiles)
}

// ResourceTileCount returns the number of resource-producing tiles.
func (m *Map) ResourceTileCount() int {
	n := 0
	for _, t := range m.Tiles {
		if t.Kind == TileResource {
			n++
		}
	}
	return n
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(size=%d, tiles=%d)", m.Size, m.TileCount())
}
