package board

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// SettlementGraph owns every corner and road plus the index from corner to
// incident roads. It only rejects structurally invalid requests; placement
// rules belong to the caller.
type SettlementGraph struct {
	corners  map[CornerID]*Corner
	roads    map[RoadID]*Road
	incident map[CornerID][]RoadID
}

// NewSettlementGraph creates an empty graph.
func NewSettlementGraph() *SettlementGraph {
	return &SettlementGraph{
		corners:  make(map[CornerID]*Corner),
		roads:    make(map[RoadID]*Road),
		incident: make(map[CornerID][]RoadID),
	}
}

// AddCorner inserts a corner with a fresh id.
func (g *SettlementGraph) AddCorner(c *Corner) error {
	if _, ok := g.corners[c.ID]; ok {
		return fmt.Errorf("corner %s already in graph", c.ID)
	}
	g.corners[c.ID] = c
	return nil
}

// AddRoad inserts a road whose endpoints are already in the graph.
func (g *SettlementGraph) AddRoad(r *Road) error {
	if _, ok := g.roads[r.ID]; ok {
		return fmt.Errorf("road %s already in graph", r.ID)
	}
	for _, end := range []CornerID{r.A, r.B} {
		if _, ok := g.corners[end]; !ok {
			return fmt.Errorf("corner %s of road %s: %w", end, r.ID, ErrUnknownCorner)
		}
	}
	g.roads[r.ID] = r
	g.incident[r.A] = append(g.incident[r.A], r.ID)
	g.incident[r.B] = append(g.incident[r.B], r.ID)
	return nil
}

// HasCorner reports whether id names a corner.
func (g *SettlementGraph) HasCorner(id CornerID) bool {
	_, ok := g.corners[id]
	return ok
}

// Corner looks up a corner by id.
func (g *SettlementGraph) Corner(id CornerID) (*Corner, bool) {
	c, ok := g.corners[id]
	return c, ok
}

// HasRoad reports whether id names a road.
func (g *SettlementGraph) HasRoad(id RoadID) bool {
	_, ok := g.roads[id]
	return ok
}

// Road looks up a road by id.
func (g *SettlementGraph) Road(id RoadID) (*Road, bool) {
	r, ok := g.roads[id]
	return r, ok
}

// RoadBetween finds the road joining two corners in either direction.
func (g *SettlementGraph) RoadBetween(a, b CornerID) (*Road, bool) {
	if r, ok := g.roads[RoadIDFor(a, b)]; ok {
		return r, true
	}
	r, ok := g.roads[RoadIDFor(b, a)]
	return r, ok
}

// Corners returns all corners ordered by id.
func (g *SettlementGraph) Corners() []*Corner {
	ids := make([]CornerID, 0, len(g.corners))
	for id := range g.corners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*Corner, len(ids))
	for i, id := range ids {
		out[i] = g.corners[id]
	}
	return out
}

// Roads returns all roads ordered by id.
func (g *SettlementGraph) Roads() []*Road {
	ids := make([]RoadID, 0, len(g.roads))
	for id := range g.roads {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*Road, len(ids))
	for i, id := range ids {
		out[i] = g.roads[id]
	}
	return out
}

// CornerCount returns the number of corners.
func (g *SettlementGraph) CornerCount() int { return len(g.corners) }

// RoadCount returns the number of roads.
func (g *SettlementGraph) RoadCount() int { return len(g.roads) }

// CornerRoads returns the roads incident to a corner.
func (g *SettlementGraph) CornerRoads(id CornerID) []*Road {
	ids := g.incident[id]
	out := make([]*Road, 0, len(ids))
	for _, rid := range ids {
		if r, ok := g.roads[rid]; ok {
			out = append(out, r)
		}
	}
	return out
}

// NeighborCorners returns the corners one road away from id.
func (g *SettlementGraph) NeighborCorners(id CornerID) []*Corner {
	roads := g.CornerRoads(id)
	out := make([]*Corner, 0, len(roads))
	for _, r := range roads {
		if c, ok := g.corners[r.Other(id)]; ok {
			out = append(out, c)
		}
	}
	return out
}

// HasPlayerRoadAt reports whether player owns any road touching corner id.
func (g *SettlementGraph) HasPlayerRoadAt(id CornerID, player int) bool {
	for _, r := range g.CornerRoads(id) {
		if r.IsOwner(player) {
			return true
		}
	}
	return false
}

// AnyOccupied reports whether any of the given corners holds a settlement.
func AnyOccupied(corners []*Corner) bool {
	for _, c := range corners {
		if c.Occupied() {
			return true
		}
	}
	return false
}

// PlayerCorners returns every corner owned by player, ordered by id.
func (g *SettlementGraph) PlayerCorners(player int) []*Corner {
	var out []*Corner
	for _, c := range g.Corners() {
		if c.IsOwner(player) {
			out = append(out, c)
		}
	}
	return out
}

// PlayerRoads returns every road built by player, ordered by id.
func (g *SettlementGraph) PlayerRoads(player int) []*Road {
	var out []*Road
	for _, r := range g.Roads() {
		if r.IsOwner(player) {
			out = append(out, r)
		}
	}
	return out
}

// Build places or upgrades a settlement on corner id.
func (g *SettlementGraph) Build(id CornerID, building Building, player int) error {
	c, ok := g.corners[id]
	if !ok {
		return fmt.Errorf("build on %s: %w", id, ErrUnknownCorner)
	}
	return c.build(building, player)
}

// ClaimRoad assigns road id to player.
func (g *SettlementGraph) ClaimRoad(id RoadID, player int) error {
	r, ok := g.roads[id]
	if !ok {
		return fmt.Errorf("claim %s: %w", id, ErrUnknownRoad)
	}
	return r.claim(player)
}

// String returns a summary of the graph.
func (g *SettlementGraph) String() string {
	return fmt.Sprintf("SettlementGraph(corners=%d, roads=%d)", len(g.corners), len(g.roads))
}
