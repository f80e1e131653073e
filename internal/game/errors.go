package game

import (
	"errors"
	"fmt"
)

// Action failures. Every error returned by Game.Perform wraps exactly one of
// these; match with errors.Is.
var (
	ErrActionFailed       = errors.New("action failed")
	ErrActionDataInvalid  = errors.New("action data invalid")
	ErrActionNotAllowed   = errors.New("action not allowed")
	ErrNotPlayerTurn      = errors.New("not player turn")
	ErrInvalidLocation    = errors.New("invalid location")
	ErrNotEnoughResources = errors.New("not enough resources")
)

// ErrMachineFault marks a failed state transition. It is always reported
// together with ErrActionFailed and leaves the game in the Error state.
var ErrMachineFault = errors.New("state machine fault")

// Code is the stable wire name of an action failure.
type Code string

const (
	CodeOK                 Code = "Ok"
	CodeActionFailed       Code = "ActionFailed"
	CodeActionDataInvalid  Code = "ActionDataInvalid"
	CodeActionNotAllowed   Code = "ActionNotAllowed"
	CodeNotPlayerTurn      Code = "NotPlayerTurn"
	CodeInvalidLocation    Code = "InvalidLocation"
	CodeNotEnoughResources Code = "NotEnoughResources"
)

// CodeOf maps an error returned by Game.Perform to its Code. Errors outside
// the taxonomy report as ActionFailed.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrActionDataInvalid):
		return CodeActionDataInvalid
	case errors.Is(err, ErrActionNotAllowed):
		return CodeActionNotAllowed
	case errors.Is(err, ErrNotPlayerTurn):
		return CodeNotPlayerTurn
	case errors.Is(err, ErrInvalidLocation):
		return CodeInvalidLocation
	case errors.Is(err, ErrNotEnoughResources):
		return CodeNotEnoughResources
	default:
		return CodeActionFailed
	}
}

func reject(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
