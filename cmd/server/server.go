package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"poker-platform/internal/archive"
	"poker-platform/internal/auth"
	"poker-platform/internal/currency"
	"poker-platform/internal/db"
	"poker-platform/internal/locks"
	"poker-platform/internal/middleware"
	"poker-platform/internal/recovery"
	"poker-platform/internal/redis"
	"poker-platform/internal/scheduler"
	"poker-platform/internal/server/game"
	"poker-platform/internal/server/handlers"
	"poker-platform/internal/store"
	"poker-platform/internal/tick"
	"poker-platform/internal/tournament"
	"poker-platform/server"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Server holds all dependencies and configuration for the poker platform server
type Server struct {
	config Config
	db     *gorm.DB
	redis  *redis.Client

	store       *store.Store
	games       *game.Service
	coordinator *tick.Coordinator
	recovery    *recovery.TableRecovery
	scheduler   *scheduler.Scheduler

	httpServer    *http.Server
	tcpServer     *server.TCPServer
	rateLimiter   *middleware.RateLimiter
	actionLimiter *middleware.RateLimiter
}

// NewServer connects the backing services and wires everything together.
func NewServer(ctx context.Context, config Config) (*Server, error) {
	database, err := db.New(config.DB)
	if err != nil {
		return nil, err
	}
	s := &Server{config: config, db: database}

	var locker locks.Locker
	if config.Redis.Enabled() {
		s.redis, err = redis.New(config.Redis)
		if err != nil {
			return nil, err
		}
		locker = locks.NewRedisLocker(s.redis.Client)
		log.Info().Str("component", "server").Msg("tick lock in redis")
	} else {
		locker = store.NewLocker(database)
		log.Info().Str("component", "server").Msg("tick lock in the database")
	}

	var archiver tournament.Archiver
	if config.Archive.Enabled() {
		a, err := archive.New(ctx, config.Archive)
		if err != nil {
			return nil, fmt.Errorf("archive: %w", err)
		}
		archiver = a
	}

	s.store = store.New(database, currency.NewService(database))
	manager := tournament.NewManager(s.store, archiver, config.Tournament)
	s.games = game.NewService(s.store, config.Game)
	s.coordinator = tick.NewCoordinator(locker, manager, s.games, s.store, config.Tick)
	s.recovery = recovery.NewTableRecovery(s.store)

	s.scheduler, err = scheduler.New(s.coordinator, config.Tick.Interval)
	if err != nil {
		return nil, err
	}

	s.rateLimiter = middleware.NewRateLimiter(config.RateLimit)
	s.actionLimiter = middleware.NewRateLimiter(config.ActionRate)
	s.httpServer = &http.Server{
		Addr:              config.HTTP.Addr,
		Handler:           s.router(auth.NewService(config.Auth), manager),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if config.TCP.Addr != "" {
		s.tcpServer = server.NewTCPServer(config.TCP.Addr,
			server.NewCommandHandler(s.store, s.games, s.coordinator, s.recovery))
	}
	return s, nil
}

func (s *Server) router(authService *auth.Service, manager *tournament.Manager) *gin.Engine {
	if s.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.HTTP.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(s.rateLimiter.Gin())

	health := map[string]handlers.HealthCheck{"database": s.store.Ping}
	if s.redis != nil {
		health["redis"] = s.redis.HealthCheck
	}

	handlers.Register(r, handlers.Deps{
		Store:         s.store,
		Games:         s.games,
		Registrar:     manager,
		Ticker:        s.coordinator,
		Auth:          authService,
		ActionLimiter: s.actionLimiter,
		Health:        health,
	})
	return r
}

// Start runs the recovery scan, then serves HTTP and TCP and starts ticking.
// Listener failures are sent on errc.
func (s *Server) Start(ctx context.Context, errc chan<- error) error {
	if _, err := s.recovery.Scan(ctx); err != nil {
		return fmt.Errorf("recovery scan: %w", err)
	}

	if s.tcpServer != nil {
		if err := s.tcpServer.Listen(); err != nil {
			return err
		}
		go func() {
			if err := s.tcpServer.Serve(); err != nil {
				errc <- err
			}
		}()
	}

	go func() {
		log.Info().Str("component", "http").Str("addr", s.httpServer.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	s.scheduler.Start()
	return nil
}

// Shutdown cancels a tick in flight and waits for it to return, drains
// in-flight HTTP requests, then closes connections. A cancelled tick leaves
// each hand at its last saved version.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.scheduler.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("scheduler: %w", err))
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}
	if s.tcpServer != nil {
		s.tcpServer.Stop()
	}

	s.rateLimiter.Stop()
	s.actionLimiter.Stop()
	s.games.Close()

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db: %w", err))
		}
	}
	return errors.Join(errs...)
}
