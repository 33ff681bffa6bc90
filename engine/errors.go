package engine

import "errors"

// Hand engine errors
var (
	// Validation errors: the action is rejected and nothing is mutated.
	ErrNotYourTurn       = errors.New("not your turn")
	ErrCannotAct         = errors.New("participant cannot act: folded or all-in")
	ErrCannotCheck       = errors.New("cannot check - must call, raise, or fold")
	ErrRaiseNotAboveBet  = errors.New("raise must exceed the current bet")
	ErrRaiseTooSmall     = errors.New("raise is below the minimum raise")
	ErrInsufficientChips = errors.New("insufficient chips for this action")
	ErrNoChips           = errors.New("player has no chips to go all-in")
	ErrUnknownAction     = errors.New("unknown action")

	// Not-found errors.
	ErrParticipantNotSeated = errors.New("participant is not seated in this hand")
	ErrHandConcluded        = errors.New("hand has already concluded")

	// Hand setup errors.
	ErrNotEnoughPlayers = errors.New("not enough players to start hand")
	ErrTooFewCards      = errors.New("hand evaluation needs at least 5 cards")
	ErrTooManyCards     = errors.New("hand evaluation takes at most 7 cards")

	// ErrIntegrity means chip accounting failed to reconcile. The hand is
	// frozen until someone looks at it.
	ErrIntegrity = errors.New("hand integrity fault")
)
