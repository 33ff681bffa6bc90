package game

import "errors"

var (
	ErrInvalidRequest   = errors.New("tournament_id, participant_id and action are required")
	ErrNotYourSeat      = errors.New("participant does not belong to the caller")
	ErrDuplicateRequest = errors.New("request was already processed")
	ErrNotPlaying       = errors.New("tournament is not dealing hands")
)
