package store

import "errors"

// Not-found errors.
var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrHandNotFound        = errors.New("no hand in progress")
)

// Conflict errors: the write lost a race or the record moved on.
var (
	ErrHandExists         = errors.New("a hand is already in progress")
	ErrVersionConflict    = errors.New("hand was modified concurrently")
	ErrStatusConflict     = errors.New("tournament status changed concurrently")
	ErrTournamentFull     = errors.New("tournament is full")
	ErrAlreadyRegistered  = errors.New("already registered for this tournament")
	ErrRegistrationClosed = errors.New("registration is closed")
)
