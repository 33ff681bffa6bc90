package handlers

import (
	"errors"
	"net/http"

	"poker-platform/engine"
	"poker-platform/internal/currency"
	"poker-platform/internal/server/game"
	"poker-platform/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	notFound = []error{
		store.ErrTournamentNotFound,
		store.ErrParticipantNotFound,
		store.ErrHandNotFound,
		engine.ErrParticipantNotSeated,
		currency.ErrUserNotFound,
	}
	badRequest = []error{
		game.ErrInvalidRequest,
		engine.ErrCannotCheck,
		engine.ErrRaiseNotAboveBet,
		engine.ErrRaiseTooSmall,
		engine.ErrInsufficientChips,
		engine.ErrNoChips,
		engine.ErrUnknownAction,
	}
	conflict = []error{
		engine.ErrNotYourTurn,
		engine.ErrCannotAct,
		engine.ErrHandConcluded,
		engine.ErrNotEnoughPlayers,
		game.ErrDuplicateRequest,
		game.ErrNotPlaying,
		store.ErrHandExists,
		store.ErrVersionConflict,
		store.ErrStatusConflict,
		store.ErrTournamentFull,
		store.ErrAlreadyRegistered,
		store.ErrRegistrationClosed,
	}
)

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case matches(err, notFound):
		return http.StatusNotFound
	case matches(err, badRequest):
		return http.StatusBadRequest
	case matches(err, conflict):
		return http.StatusConflict
	case errors.Is(err, game.ErrNotYourSeat):
		return http.StatusForbidden
	case errors.Is(err, currency.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("component", "http").Str("path", c.FullPath()).Msg("request failed")
		if errors.Is(err, engine.ErrIntegrity) {
			c.JSON(status, gin.H{"error": "hand is frozen pending review"})
			return
		}
		c.JSON(status, gin.H{"error": "Server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
