package game

import "errors"

var (
	ErrAbilityInFlight   = errors.New("ability execution already in flight")
	ErrPhaseResolving    = errors.New("phase triggers still resolving")
	ErrUnknownCard       = errors.New("unknown card")
	ErrOutOfBounds       = errors.New("coordinate out of bounds")
	ErrOccupied          = errors.New("coordinate occupied")
	ErrInvalidDefinition = errors.New("invalid ability definition")
	ErrInvalidCondition  = errors.New("invalid condition expression")
	ErrNotYourTurn       = errors.New("not your turn")
)
