// Seaport placement: picks coastal roads spread around the ring and attaches
// an exchange contract to both of their corners.
package board

import (
	"cmp"
	"fmt"
	"math"

	"golang.org/x/exp/slices"

	"github.com/vgerber/settler-island-server/internal/economy"
	"github.com/vgerber/settler-island-server/internal/entropy"
)

// seaportContracts returns the generic 3:1 contracts followed by one 2:1
// contract per resource kind.
func seaportContracts(generic int) []economy.Contract {
	contracts := make([]economy.Contract, 0, generic+len(economy.Resources))
	for i := 0; i < generic; i++ {
		contracts = append(contracts, economy.GenericPortContract)
	}
	for _, r := range economy.Resources {
		contracts = append(contracts, economy.PortContract(r))
	}
	return contracts
}

// coastalRoads returns every road whose endpoints are both coastal, ordered
// by the angle of its midpoint around the board centre.
func coastalRoads(g *SettlementGraph) []*Road {
	type scored struct {
		road  *Road
		angle float64
	}
	var candidates []scored

	for _, r := range g.Roads() {
		a, _ := g.Corner(r.A)
		b, _ := g.Corner(r.B)
		if !a.Coastal || !b.Coastal {
			continue
		}
		ax, ay := cornerCenter(a)
		bx, by := cornerCenter(b)
		candidates = append(candidates, scored{r, math.Atan2((ay+by)/2, (ax+bx)/2)})
	}

	slices.SortStableFunc(candidates, func(a, b scored) int {
		return cmp.Compare(a.angle, b.angle)
	})

	out := make([]*Road, len(candidates))
	for i, c := range candidates {
		out[i] = c.road
	}
	return out
}

func cornerCenter(c *Corner) (x, y float64) {
	for _, t := range c.Tiles {
		tx, ty := t.Center()
		x += tx
		y += ty
	}
	return x / 3, y / 3
}

// placeSeaports spreads the shuffled contracts evenly over the coastal roads.
func placeSeaports(g *SettlementGraph, contracts []economy.Contract, rng entropy.Source) error {
	if len(contracts) == 0 {
		return nil
	}
	roads := coastalRoads(g)
	if len(roads) < len(contracts) {
		return fmt.Errorf("%d coastal roads for %d seaports", len(roads), len(contracts))
	}

	rng.Shuffle(len(contracts), func(i, j int) { contracts[i], contracts[j] = contracts[j], contracts[i] })

	for i, contract := range contracts {
		road := roads[i*len(roads)/len(contracts)]
		for _, id := range []CornerID{road.A, road.B} {
			corner, _ := g.Corner(id)
			if corner.Port != nil {
				return fmt.Errorf("corner %s already has a seaport", id)
			}
			corner.Port = &Seaport{Contract: contract}
		}
	}
	return nil
}
