// Package handlers is the HTTP surface: tournament browsing, registration,
// action submission and the tick trigger.
package handlers

import (
	"context"
	"time"

	"poker-platform/internal/auth"
	"poker-platform/internal/middleware"
	domain "poker-platform/models"

	"github.com/gin-gonic/gin"
)

// Store is the read side the handlers use directly.
type Store interface {
	GetTournament(ctx context.Context, id string) (*domain.Tournament, error)
	ListTournaments(ctx context.Context, statuses ...domain.TournamentStatus) ([]domain.Tournament, error)
	ListParticipants(ctx context.Context, tournamentID string) ([]domain.Participant, error)
	ListHistory(ctx context.Context, tournamentID string, limit int) ([]domain.HandHistory, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// Games plays hands on behalf of a caller.
type Games interface {
	SubmitAction(ctx context.Context, req domain.ActionRequest) (*domain.HandState, error)
	NextHand(ctx context.Context, tournamentID string, now time.Time) (*domain.HandState, bool, error)
	View(ctx context.Context, tournamentID, viewerParticipantID string) (*domain.HandState, error)
}

type Registrar interface {
	Register(ctx context.Context, tournamentID, userID string, now time.Time) (*domain.Participant, error)
}

type Ticker interface {
	Run(ctx context.Context) (domain.TickResult, error)
}

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Store     Store
	Games     Games
	Registrar Registrar
	Ticker    Ticker
	Auth      *auth.Service
	// ActionLimiter throttles action submissions per user. Optional.
	ActionLimiter *middleware.RateLimiter
	Health        map[string]HealthCheck
	Now           func() time.Time
}

// Register mounts every route on r.
func Register(r gin.IRouter, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}

	r.GET("/healthz", func(c *gin.Context) { HandleHealth(c, d.Health) })

	api := r.Group("/api")

	public := api.Group("")
	public.Use(middleware.OptionalAuth(d.Auth))
	{
		public.GET("/tournaments", func(c *gin.Context) { HandleListTournaments(c, d.Store) })
		public.GET("/tournaments/:id", func(c *gin.Context) { HandleGetTournament(c, d.Store, d.Games, d.Now) })
		public.GET("/tournaments/:id/history", func(c *gin.Context) { HandleGetHistory(c, d.Store) })
	}

	protected := api.Group("")
	protected.Use(middleware.Auth(d.Auth))
	{
		protected.GET("/me", func(c *gin.Context) { HandleMe(c, d.Store) })
		protected.POST("/tournaments/:id/register", func(c *gin.Context) { HandleRegister(c, d.Registrar, d.Now) })
		protected.POST("/tournaments/:id/hands", func(c *gin.Context) { HandleNextHand(c, d.Store, d.Games, d.Now) })
		protected.POST("/tick", func(c *gin.Context) { HandleTick(c, d.Ticker) })

		actions := protected.Group("")
		if d.ActionLimiter != nil {
			actions.Use(d.ActionLimiter.Gin())
		}
		actions.POST("/tournaments/:id/actions", func(c *gin.Context) { HandleAction(c, d.Games) })
	}
}
