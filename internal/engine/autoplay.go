package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/exp/slices"

	"github.com/vgerber/settler-island-server/internal/board"
	"github.com/vgerber/settler-island-server/internal/economy"
	"github.com/vgerber/settler-island-server/internal/entropy"
	"github.com/vgerber/settler-island-server/internal/game"
)

// Runner defaults.
const (
	DefaultMaxActions  = 2000
	DefaultTargetScore = 10
)

// Move is one action of one player.
type Move struct {
	Player int
	Action game.Action
}

// Policy picks the next move for a game. ok is false when the policy has
// nothing legal to offer.
type Policy interface {
	Next(g *game.Game) (m Move, ok bool)
}

// Outcome tells why a run ended.
type Outcome string

const (
	OutcomeWon      Outcome = "won"
	OutcomeLimit    Outcome = "limit"
	OutcomeStuck    Outcome = "stuck"
	OutcomeHalted   Outcome = "halted"
	OutcomeCanceled Outcome = "canceled"
)

// Result summarizes a run.
type Result struct {
	Outcome   Outcome
	Actions   int
	Winner    *int
	Standings []Standing
}

// Runner drives a match with a policy, one action per step.
type Runner struct {
	Interval    time.Duration // Pause between actions; 0 runs flat out
	MaxActions  int           // 0 means DefaultMaxActions
	TargetScore int           // 0 means DefaultTargetScore
}

// Run plays until a player reaches the target score, the action limit is
// hit, the policy is stuck, the game halts or ctx is done. A rejected policy
// move is returned as an error.
func (r Runner) Run(ctx context.Context, m *Match, p Policy) (Result, error) {
	limit := r.MaxActions
	if limit <= 0 {
		limit = DefaultMaxActions
	}
	target := r.TargetScore
	if target <= 0 {
		target = DefaultTargetScore
	}

	m.log.Info("autoplay started", "max_actions", limit, "target_score", target)
	res := Result{Outcome: OutcomeLimit}
	for res.Actions < limit {
		if ctx.Err() != nil {
			res.Outcome = OutcomeCanceled
			break
		}

		start := time.Now()
		outcome, err := m.step(p, target)
		if err != nil {
			res.Standings = m.Standings()
			return res, err
		}
		if outcome == OutcomeHalted || outcome == OutcomeStuck {
			res.Outcome = outcome
			break
		}
		res.Actions++
		if outcome == OutcomeWon {
			res.Outcome = outcome
			break
		}

		if elapsed := time.Since(start); elapsed < r.Interval {
			select {
			case <-ctx.Done():
			case <-time.After(r.Interval - elapsed):
			}
		}
	}

	res.Standings = m.Standings()
	if res.Outcome == OutcomeWon && len(res.Standings) > 0 {
		winner := res.Standings[0].Player
		res.Winner = &winner
	}
	m.log.Info("autoplay finished", "outcome", res.Outcome, "actions", res.Actions)
	return res, nil
}

// step performs one policy move under the match lock. An empty outcome means
// the game goes on.
func (m *Match) step(p Policy, target int) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.game.State() == game.StateError {
		return OutcomeHalted, nil
	}
	mv, ok := p.Next(m.game)
	if !ok {
		m.log.Warn("policy has no move", "state", m.game.State(), "player", m.game.CurrentPlayer())
		return OutcomeStuck, nil
	}
	if err := m.perform(mv.Player, mv.Action); err != nil {
		return "", fmt.Errorf("move %s by player %d in %s: %w", mv.Action.ID, mv.Player, m.game.State(), err)
	}
	if top := standings(m.game); len(top) > 0 && top[0].Score >= target {
		return OutcomeWon, nil
	}
	return "", nil
}

// MaxRoads caps the roads Greedy builds per player.
const MaxRoads = 15

// Greedy builds whatever it can afford, trades with the bank and other
// players towards its next building, and otherwise ends the turn. Ties are
// broken by rng. A Greedy belongs to one match and one runner.
type Greedy struct {
	rng entropy.Source
	log *slog.Logger

	turn        int
	offeredTurn int
	answered    map[int]bool
}

// NewGreedy creates the policy. logger may be nil.
func NewGreedy(rng entropy.Source, logger *slog.Logger) *Greedy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Greedy{rng: rng, log: logger, offeredTurn: -1}
}

// Next implements Policy.
func (p *Greedy) Next(g *game.Game) (Move, bool) {
	current := g.CurrentPlayer()
	switch g.State() {
	case game.StateStartVillagePlacement:
		corners := legalVillages(g, current, false)
		if len(corners) == 0 {
			return Move{}, false
		}
		return move(current, game.ActionBuildSettlement, village(pick(p.rng, corners)))

	case game.StateStartRoadPlacement:
		placed, ok := g.PendingPlacement()
		if !ok {
			return Move{}, false
		}
		var roads []board.RoadID
		for _, r := range g.Board.Graph.CornerRoads(placed) {
			if !r.Claimed() {
				roads = append(roads, r.ID)
			}
		}
		if len(roads) == 0 {
			return Move{}, false
		}
		return move(current, game.ActionBuildRoad, game.PlaceRoadData{RoadID: pick(p.rng, roads)})

	case game.StateRollDice:
		return move(current, game.ActionRollDice, nil)

	case game.StateRobberRemoveCards:
		for _, pl := range g.Players {
			if pl.OverHandLimit() {
				n := pl.Resources.Total() - game.MaxHandSize
				return move(pl.ID, game.ActionRemoveCards, discardPlan(pl.Resources.Snapshot(), n))
			}
		}
		return Move{}, false

	case game.StateRobberRelocate:
		return move(current, game.ActionPlaceRobber, robberPlan(g, current))

	case game.StateBuildNFreeRoads:
		roads := legalRoads(g, current)
		if len(roads) == 0 {
			return Move{}, false
		}
		return move(current, game.ActionBuildRoad, game.PlaceRoadData{RoadID: pick(p.rng, roads)})

	case game.StateTrading:
		return p.answer(g, current)

	case game.StateSelectAction:
		return p.selectAction(g, g.Players[current])
	}
	return Move{}, false
}

func (p *Greedy) selectAction(g *game.Game, pl *game.Player) (Move, bool) {
	hand := pl.Resources

	if hand.HasAll(economy.CityCost()) {
		for _, c := range g.Board.Graph.PlayerCorners(pl.ID) {
			if g.CanBuildCity(pl.ID, c.ID) == nil {
				return move(pl.ID, game.ActionBuildSettlement, game.PlaceSettlementData{
					SettlementType: board.BuildingCity,
					SettlementID:   c.ID,
				})
			}
		}
	}

	villages := legalVillages(g, pl.ID, true)
	if hand.HasAll(economy.VillageCost()) && len(villages) > 0 {
		return move(pl.ID, game.ActionBuildSettlement, village(pick(p.rng, villages)))
	}

	if mv, ok := p.playCard(g, pl); ok {
		return mv, true
	}

	roads := legalRoads(g, pl.ID)
	if hand.HasAll(economy.RoadCost()) && len(roads) > 0 && len(g.Board.Graph.PlayerRoads(pl.ID)) < MaxRoads {
		return move(pl.ID, game.ActionBuildRoad, game.PlaceRoadData{RoadID: pick(p.rng, roads)})
	}

	if hand.HasAll(economy.DevelopmentCardCost()) && g.Board.Deck.Remaining() > 0 {
		return move(pl.ID, game.ActionDrawDevelopmentCard, nil)
	}

	goal := economy.VillageCost()
	if len(villages) == 0 {
		goal = economy.CityCost()
	}
	if mv, ok := bankTradePlan(g, pl, goal); ok {
		return mv, true
	}
	if p.offeredTurn != p.turn {
		if give, want, ok := tradePlan(g, pl, goal); ok {
			p.offeredTurn = p.turn
			p.answered = make(map[int]bool)
			p.log.Debug("offering trade", "player", pl.ID, "give", give, "want", want)
			return move(pl.ID, game.ActionOfferTrade, game.TradeOfferData{
				ResourceOffer:   economy.Collection{give: 1},
				ResourceReceive: economy.Collection{want: 1},
			})
		}
	}

	p.turn++
	return move(pl.ID, game.ActionEndTurn, nil)
}

// playCard plays the first useful development card.
func (p *Greedy) playCard(g *game.Game, pl *game.Player) (Move, bool) {
	switch {
	case pl.CardCount(board.CardKnight) > 0:
		return move(pl.ID, game.ActionPlayDevelopmentCard, game.PlayDevelopmentCardData{Card: board.CardKnight})

	case pl.CardCount(board.CardStreetConstruction) > 0 && len(legalRoads(g, pl.ID)) >= game.FreeRoads:
		return move(pl.ID, game.ActionPlayDevelopmentCard, game.PlayDevelopmentCardData{Card: board.CardStreetConstruction})

	case pl.CardCount(board.CardMonopoly) > 0:
		best, most := economy.Resources[0], -1
		for _, r := range economy.Resources {
			n := 0
			for _, other := range g.Players {
				if other.ID != pl.ID {
					n += other.Resources.Count(r)
				}
			}
			if n > most {
				best, most = r, n
			}
		}
		return move(pl.ID, game.ActionPlayDevelopmentCard, game.PlayDevelopmentCardData{
			Card:     board.CardMonopoly,
			Resource: best,
		})

	case pl.CardCount(board.CardInvention) > 0:
		var picks []economy.Resource
		for _, r := range scarcest(pl.Resources.Snapshot()) {
			if g.Bank.Has(r, 1) {
				picks = append(picks, r)
			}
			if len(picks) == 2 {
				return move(pl.ID, game.ActionPlayDevelopmentCard, game.PlayDevelopmentCardData{
					Card:      board.CardInvention,
					ResourceA: picks[0],
					ResourceB: picks[1],
				})
			}
		}
	}
	return Move{}, false
}

// answer drives an open offer: invitees answer in id order, then the creator
// completes with the first acceptor or cancels.
func (p *Greedy) answer(g *game.Game, current int) (Move, bool) {
	offer := g.Offer()
	if offer == nil {
		return move(current, game.ActionCancelTrade, nil)
	}
	if p.answered == nil {
		p.answered = make(map[int]bool)
	}

	invitees := make([]int, 0, len(offer.Responses))
	for id := range offer.Responses {
		invitees = append(invitees, id)
	}
	slices.Sort(invitees)
	for _, id := range invitees {
		if p.answered[id] {
			continue
		}
		p.answered[id] = true
		if g.Players[id].Resources.HasAll(offer.Receive) {
			return move(id, game.ActionAcceptTrade, nil)
		}
		return move(id, game.ActionRejectTrade, nil)
	}

	for _, id := range invitees {
		if offer.Accepted(id) {
			partner := id
			return move(current, game.ActionCompleteTrade, game.CompleteTradeData{AcceptedPlayerID: &partner})
		}
	}
	return move(current, game.ActionCancelTrade, nil)
}

func pick[T any](rng entropy.Source, items []T) T {
	return items[rng.Intn(len(items))]
}

func move(player int, id string, data any) (Move, bool) {
	a, err := game.NewAction(id, data)
	if err != nil {
		return Move{}, false
	}
	return Move{Player: player, Action: a}, true
}

func village(id board.CornerID) game.PlaceSettlementData {
	return game.PlaceSettlementData{SettlementType: board.BuildingVillage, SettlementID: id}
}

func legalVillages(g *game.Game, player int, requireRoad bool) []board.CornerID {
	var out []board.CornerID
	for _, c := range g.Board.Graph.Corners() {
		if g.CanBuildVillage(player, c.ID, requireRoad) == nil {
			out = append(out, c.ID)
		}
	}
	return out
}

func legalRoads(g *game.Game, player int) []board.RoadID {
	var out []board.RoadID
	for _, r := range g.Board.Graph.Roads() {
		if g.CanBuildRoad(player, r.ID) == nil {
			out = append(out, r.ID)
		}
	}
	return out
}

// discardPlan takes n units, always from the largest pile.
func discardPlan(hand economy.Collection, n int) economy.Collection {
	hand = hand.Clone()
	out := make(economy.Collection)
	for ; n > 0; n-- {
		best := economy.Resource("")
		for _, r := range economy.Resources {
			if hand[r] > 0 && (best == "" || hand[r] > hand[best]) {
				best = r
			}
		}
		if best == "" {
			break
		}
		hand[best]--
		out[best]++
	}
	return out
}

// robberPlan targets the richest opponent on a tile the player has not
// settled. Without one it moves the robber to any other tile.
func robberPlan(g *game.Game, player int) game.PlaceRobberData {
	var (
		fallback  *board.Coord
		best      game.PlaceRobberData
		bestTotal = -1
	)
	for _, c := range g.Board.Map.Coords() {
		if c == g.Board.Robber {
			continue
		}
		owners := g.Board.TileOwners(c)
		if slices.Contains(owners, player) {
			if fallback == nil {
				tile := c
				fallback = &tile
			}
			continue
		}
		data := game.PlaceRobberData{TileLocation: c}
		total := 0
		for _, id := range owners {
			if n := g.Players[id].Resources.Total(); n > total {
				victim := id
				data.RobbedPlayerID, total = &victim, n
			}
		}
		if total > bestTotal {
			best, bestTotal = data, total
		}
	}
	if bestTotal < 0 && fallback != nil {
		best = robberFallback(g, player, *fallback)
	}
	return best
}

// robberFallback names a robbable opponent on tile, if there is one.
func robberFallback(g *game.Game, player int, tile board.Coord) game.PlaceRobberData {
	data := game.PlaceRobberData{TileLocation: tile}
	for _, id := range g.Board.TileOwners(tile) {
		if id != player && g.Players[id].Resources.Total() > 0 {
			victim := id
			data.RobbedPlayerID = &victim
			break
		}
	}
	return data
}

// scarcest orders resource kinds by ascending count.
func scarcest(hand economy.Collection) []economy.Resource {
	out := slices.Clone(economy.Resources[:])
	slices.SortStableFunc(out, func(a, b economy.Resource) int { return hand[a] - hand[b] })
	return out
}

// missing returns the first kind of goal the hand cannot cover.
func missing(hand *economy.Ledger, goal economy.Collection) (economy.Resource, bool) {
	for _, r := range economy.Resources {
		if goal[r] > 0 && !hand.Has(r, goal[r]) {
			return r, true
		}
	}
	return "", false
}

// bankTradePlan exchanges the cheapest surplus kind for the first missing
// kind of goal, using the best contract the player holds.
func bankTradePlan(g *game.Game, pl *game.Player, goal economy.Collection) (Move, bool) {
	want, ok := missing(pl.Resources, goal)
	if !ok || !g.Bank.Has(want, 1) {
		return Move{}, false
	}
	contracts := g.Board.PlayerContracts(pl.ID)
	receive := economy.Collection{want: 1}
	for _, r := range economy.Resources {
		if r == want {
			continue
		}
		for send := 2; send <= 4 && send <= pl.Resources.Count(r); send++ {
			offer := economy.Collection{r: send}
			if _, ok := economy.AcceptedBy(contracts, receive, offer); ok {
				return move(pl.ID, game.ActionOfferBankTrade, game.TradeOfferData{
					ResourceOffer:   offer,
					ResourceReceive: receive,
				})
			}
		}
	}
	return Move{}, false
}

// tradePlan offers one unit the goal does not need for one it lacks.
func tradePlan(g *game.Game, pl *game.Player, goal economy.Collection) (give, want economy.Resource, ok bool) {
	want, ok = missing(pl.Resources, goal)
	if !ok {
		return "", "", false
	}
	for _, r := range economy.Resources {
		if r != want && pl.Resources.Count(r) > goal[r] {
			return r, want, true
		}
	}
	return "", "", false
}
