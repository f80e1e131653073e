package game

// rollDice waits for the turn holder to roll. A 7 starts the robber,
// anything else pays out and opens the action phase.
type rollDice struct{}

func (*rollDice) ID() StateID    { return StateRollDice }
func (*rollDice) activate(*Game) {}

func (s *rollDice) perform(g *Game, player int, a Action) error {
	if !g.IsPlayerTurn(player) {
		return reject(ErrNotPlayerTurn, "player %d, turn of %d", player, g.current)
	}
	if a.ID != ActionRollDice {
		return reject(ErrActionNotAllowed, "%s in %s", a.ID, s.ID())
	}

	roll := g.rollDice()
	total := roll.Total()
	if total == 7 {
		if g.AnyOverHandLimit() {
			return g.transition(StateRobberRemoveCards)
		}
		return g.transition(StateRobberRelocate)
	}

	paid := g.distribute(total)
	g.log.Debug("dice rolled", "player", player, "total", total, "paid_players", len(paid))
	return g.transition(StateSelectAction)
}
