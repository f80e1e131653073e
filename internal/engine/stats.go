package engine

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/slices"

	"github.com/vgerber/settler-island-server/internal/board"
	"github.com/vgerber/settler-island-server/internal/game"
)

// Stats aggregates the event log of a match.
type Stats struct {
	Actions    int               `json:"actions"`
	Rejected   int               `json:"rejected"`
	Rolls      int               `json:"rolls"`
	Sevens     int               `json:"sevens"`
	DiceTotals [13]int           `json:"dice_totals"` // Index is the rolled total
	Categories map[string]int    `json:"categories"`
	Codes      map[game.Code]int `json:"codes"`
}

func newStats() Stats {
	return Stats{
		Categories: make(map[string]int),
		Codes:      make(map[game.Code]int),
	}
}

func (s *Stats) count(e Event) {
	s.Actions++
	if e.Code != game.CodeOK {
		s.Rejected++
	}
	s.Categories[e.Category]++
	s.Codes[e.Code]++
}

func (s *Stats) rolled(roll game.DiceRoll) {
	total := roll.Total()
	if total < 0 || total >= len(s.DiceTotals) {
		return
	}
	s.Rolls++
	s.DiceTotals[total]++
	if total == 7 {
		s.Sevens++
	}
}

func (s Stats) clone() Stats {
	out := s
	out.Categories = make(map[string]int, len(s.Categories))
	for k, v := range s.Categories {
		out.Categories[k] = v
	}
	out.Codes = make(map[game.Code]int, len(s.Codes))
	for k, v := range s.Codes {
		out.Codes[k] = v
	}
	return out
}

// Summary renders the statistics for logs and terminals.
func (s Stats) Summary() string {
	return fmt.Sprintf("%s actions (%s rejected), %s rolls, %s sevens",
		humanize.Comma(int64(s.Actions)),
		humanize.Comma(int64(s.Rejected)),
		humanize.Comma(int64(s.Rolls)),
		humanize.Comma(int64(s.Sevens)),
	)
}

// Standing is the score of one player. Scoring lives here rather than in the
// rules engine: villages count 1, cities 2, held victory point cards 1.
type Standing struct {
	Player   int `json:"player"`
	Villages int `json:"villages"`
	Cities   int `json:"cities"`
	Roads    int `json:"roads"`
	Cards    int `json:"victory_cards"`
	Score    int `json:"score"`
}

// Place renders a one-based rank, e.g. "1st".
func Place(rank int) string {
	return humanize.Ordinal(rank + 1)
}

// standings returns every player's score, best first. Ties keep player order.
func standings(g *game.Game) []Standing {
	out := make([]Standing, 0, len(g.Players))
	for _, p := range g.Players {
		st := Standing{
			Player: p.ID,
			Roads:  len(g.Board.Graph.PlayerRoads(p.ID)),
			Cards:  p.CardCount(board.CardVictoryPoint),
		}
		for _, c := range g.Board.Graph.PlayerCorners(p.ID) {
			switch c.Settlement.Building {
			case board.BuildingVillage:
				st.Villages++
			case board.BuildingCity:
				st.Cities++
			}
		}
		st.Score = st.Villages + 2*st.Cities + st.Cards
		out = append(out, st)
	}
	slices.SortStableFunc(out, func(a, b Standing) int { return b.Score - a.Score })
	return out
}
