package game

import "fmt"

// StateID names a state of the game flow.
type StateID string

const (
	StateStartVillagePlacement StateID = "StartVillagePlacement"
	StateStartRoadPlacement    StateID = "StartRoadPlacement"
	StateRollDice              StateID = "RollDice"
	StateSelectAction          StateID = "SelectAction"
	StateRobberRemoveCards     StateID = "RobberRemoveCards"
	StateRobberRelocate        StateID = "RobberRelocate"
	StateBuildNFreeRoads       StateID = "BuildNFreeRoads"
	StateTrading               StateID = "Trading"
	StateError                 StateID = "Error"
)

// FreeRoads is the number of roads granted by StreetConstruction.
const FreeRoads = 2

// State is one node of the game flow. activate runs once on every entry;
// perform validates and applies a single action.
type State interface {
	ID() StateID
	activate(g *Game)
	perform(g *Game, player int, a Action) error
}

// states maps every reachable id to its constructor.
var states = map[StateID]func() State{
	StateStartVillagePlacement: func() State { return &startVillagePlacement{} },
	StateStartRoadPlacement:    func() State { return &startRoadPlacement{} },
	StateRollDice:              func() State { return &rollDice{} },
	StateSelectAction:          func() State { return &selectAction{} },
	StateRobberRemoveCards:     func() State { return &robberRemoveCards{} },
	StateRobberRelocate:        func() State { return &robberRelocate{} },
	StateBuildNFreeRoads:       func() State { return &buildFreeRoads{total: FreeRoads} },
	StateTrading:               func() State { return &trading{} },
	StateError:                 func() State { return errorState{} },
}

// Machine holds the current state. Transitions to an unknown id force the
// terminal Error state.
type Machine struct {
	current  State
	registry map[StateID]func() State
	fault    error
}

func newMachine(registry map[StateID]func() State) *Machine {
	return &Machine{registry: registry}
}

// Current returns the id of the active state.
func (m *Machine) Current() StateID {
	if m.current == nil {
		return StateError
	}
	return m.current.ID()
}

func (m *Machine) transition(g *Game, id StateID) error {
	ctor, ok := m.registry[id]
	if !ok {
		m.current = errorState{}
		m.fault = fmt.Errorf("%w: %w: unknown state %q", ErrActionFailed, ErrMachineFault, id)
		g.log.Error("state machine fault, game halted", "target", string(id), "err", m.fault)
		return m.fault
	}
	next := ctor()
	m.current = next
	next.activate(g)
	return nil
}

// errorState rejects everything.
type errorState struct{}

func (errorState) ID() StateID       { return StateError }
func (errorState) activate(g *Game) {}

func (errorState) perform(g *Game, player int, a Action) error {
	return reject(ErrActionNotAllowed, "game halted in %s state", StateError)
}
