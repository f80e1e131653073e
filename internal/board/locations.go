package board

import (
	"errors"
	"fmt"

	"github.com/vgerber/settler-island-server/internal/economy"
)

var (
	ErrUnknownCorner = errors.New("unknown corner")
	ErrUnknownRoad   = errors.New("unknown road")
	ErrOccupied      = errors.New("location occupied")
	ErrNotOwner      = errors.New("location not owned by player")
	ErrAlreadyCity   = errors.New("settlement is already a city")
)

// CornerID identifies a settlement corner. It is derived from the min and
// max of the corner's three tile coordinates, so every tile sharing the
// corner computes the same id.
type CornerID string

// RoadID identifies a road between two corners.
type RoadID string

// CornerIDFor derives the corner id from its three member coordinates.
func CornerIDFor(tiles ...Coord) CornerID {
	return CornerID(MinCoord(tiles...).String() + "-" + MaxCoord(tiles...).String())
}

// RoadIDFor derives the directed road id between two corners.
func RoadIDFor(a, b CornerID) RoadID {
	return RoadID(fmt.Sprintf("(%s)-(%s)", a, b))
}

// Building is the tier of a settlement on a corner.
type Building uint8

const (
	BuildingVillage Building = iota + 1
	BuildingCity
)

func (b Building) String() string {
	switch b {
	case BuildingVillage:
		return "Village"
	case BuildingCity:
		return "City"
	default:
		return "Unknown"
	}
}

func (b Building) MarshalText() ([]byte, error) {
	if b != BuildingVillage && b != BuildingCity {
		return nil, fmt.Errorf("invalid building %d", b)
	}
	return []byte(b.String()), nil
}

func (b *Building) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Village":
		*b = BuildingVillage
	case "City":
		*b = BuildingCity
	default:
		return fmt.Errorf("invalid building %q", text)
	}
	return nil
}

// Yield is the number of units a building collects per producing roll.
func (b Building) Yield() int {
	if b == BuildingCity {
		return 2
	}
	return 1
}

// Settlement is a player's building on a corner.
type Settlement struct {
	Owner    int      `json:"owner"`
	Building Building `json:"building"`
}

// Seaport attaches an exchange contract to a coastal corner.
type Seaport struct {
	Contract economy.Contract
}

// Corner is a settlement location where up to three tiles meet.
type Corner struct {
	ID         CornerID    `json:"id"`
	Tiles      [3]Coord    `json:"tiles"`
	Coastal    bool        `json:"coastal"`
	Settlement *Settlement `json:"settlement,omitempty"`
	Port       *Seaport    `json:"-"`
}

// Occupied reports whether any player has built on the corner.
func (c *Corner) Occupied() bool {
	return c.Settlement != nil
}

// IsOwner reports whether player owns the settlement on the corner.
func (c *Corner) IsOwner(player int) bool {
	return c.Settlement != nil && c.Settlement.Owner == player
}

func (c *Corner) build(building Building, player int) error {
	switch building {
	case BuildingVillage:
		if c.Settlement != nil {
			return fmt.Errorf("corner %s held by player %d: %w", c.ID, c.Settlement.Owner, ErrOccupied)
		}
		c.Settlement = &Settlement{Owner: player, Building: BuildingVillage}
		return nil
	case BuildingCity:
		if !c.IsOwner(player) {
			return fmt.Errorf("cities can only upgrade villages of player %d on %s: %w", player, c.ID, ErrNotOwner)
		}
		if c.Settlement.Building == BuildingCity {
			return fmt.Errorf("corner %s: %w", c.ID, ErrAlreadyCity)
		}
		c.Settlement.Building = BuildingCity
		return nil
	default:
		return fmt.Errorf("invalid building %d", building)
	}
}

// Road connects two corners and may be claimed once.
type Road struct {
	ID    RoadID   `json:"id"`
	A     CornerID `json:"a"`
	B     CornerID `json:"b"`
	Owner *int     `json:"owner,omitempty"`
}

// Claimed reports whether a player has built the road.
func (r *Road) Claimed() bool {
	return r.Owner != nil
}

// IsOwner reports whether player built the road.
func (r *Road) IsOwner(player int) bool {
	return r.Owner != nil && *r.Owner == player
}

// Touches reports whether the road ends at corner id.
func (r *Road) Touches(id CornerID) bool {
	return r.A == id || r.B == id
}

// Other returns the endpoint opposite to id.
func (r *Road) Other(id CornerID) CornerID {
	if r.A == id {
		return r.B
	}
	return r.A
}

func (r *Road) claim(player int) error {
	if r.Owner != nil {
		return fmt.Errorf("road %s built by player %d: %w", r.ID, *r.Owner, ErrOccupied)
	}
	owner := player
	r.Owner = &owner
	return nil
}
