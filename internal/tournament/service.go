// Package tournament owns the lifecycle of tournaments and cash tables:
// promotion through the status flow, standing supply per kind, bot seat
// fill, completion and retention purge.
package tournament

import (
	"context"
	"sync/atomic"
	"time"

	"poker-platform/internal/store"
	domain "poker-platform/models"
)

// Store is the persistence the lifecycle needs.
type Store interface {
	CreateTournament(ctx context.Context, t *domain.Tournament) error
	GetTournament(ctx context.Context, id string) (*domain.Tournament, error)
	ListTournaments(ctx context.Context, statuses ...domain.TournamentStatus) ([]domain.Tournament, error)
	CountOpenByKind(ctx context.Context) (map[domain.Kind]int, error)
	AdvanceStatus(ctx context.Context, id string, from, to domain.TournamentStatus, now time.Time) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]domain.Tournament, error)
	PurgeTournament(ctx context.Context, id string) error
	ListParticipants(ctx context.Context, tournamentID string) ([]domain.Participant, error)
	ListHistory(ctx context.Context, tournamentID string, limit int) ([]domain.HandHistory, error)
	ListBots(ctx context.Context) ([]domain.BotIdentity, error)
	AddBots(ctx context.Context, tournamentID string, bots []domain.BotIdentity, stack int, statuses ...domain.TournamentStatus) ([]domain.Participant, error)
	PruneBots(ctx context.Context, tournamentID string) (int, error)
	RegisterHuman(ctx context.Context, tournamentID, userID string, now time.Time) (*domain.Participant, error)
	FinishTournament(ctx context.Context, tournamentID string, now time.Time) (*store.Settlement, error)
}

// Archiver stores a finished tournament somewhere durable before purge.
type Archiver interface {
	ArchiveTournament(ctx context.Context, t domain.Tournament, participants []domain.Participant, history []domain.HandHistory) error
}

// Config holds the lifecycle knobs.
type Config struct {
	// SupplyTarget is the number of open tournaments kept per kind.
	SupplyTarget int `mapstructure:"supply_target"`
	// Retention is how long a finished tournament is kept before purge.
	Retention time.Duration `mapstructure:"retention"`
	// FillPerTick caps bots seated per tournament per tick while the start
	// is not imminent.
	FillPerTick int `mapstructure:"fill_per_tick"`
	// FillLead is how close to the start a fill becomes complete.
	FillLead time.Duration `mapstructure:"fill_lead"`
	// CashSessionHands is how many hands a cash table plays before closing.
	CashSessionHands int `mapstructure:"cash_session_hands"`
	// ArchiveHistoryLimit caps hand history rows sent to the archive.
	ArchiveHistoryLimit int `mapstructure:"archive_history_limit"`
	Kinds               []domain.Kind `mapstructure:"kinds"`
}

func DefaultConfig() Config {
	return Config{
		SupplyTarget:        2,
		Retention:           24 * time.Hour,
		FillPerTick:         2,
		FillLead:            time.Minute,
		CashSessionHands:    200,
		ArchiveHistoryLimit: 1000,
		Kinds:               domain.AllKinds,
	}
}

// Manager runs the lifecycle. It holds no tournament state between calls.
type Manager struct {
	store    Store
	archiver Archiver
	cfg      Config
	seq      atomic.Int64
}

// NewManager creates a lifecycle manager. archiver may be nil, in which
// case finished tournaments are purged without an archive copy.
func NewManager(s Store, archiver Archiver, cfg Config) *Manager {
	if len(cfg.Kinds) == 0 {
		cfg.Kinds = domain.AllKinds
	}
	return &Manager{store: s, archiver: archiver, cfg: cfg}
}

func (m *Manager) Config() Config { return m.cfg }

// Register seats a human in a tournament, debiting the buy-in.
func (m *Manager) Register(ctx context.Context, tournamentID, userID string, now time.Time) (*domain.Participant, error) {
	return m.store.RegisterHuman(ctx, tournamentID, userID, now)
}

// StartingStack is the stack a new seat gets.
func StartingStack(t *domain.Tournament) int {
	if t.Kind == domain.KindCash {
		return t.BuyIn
	}
	return t.StartingStack
}
