// Package store is the persistence adapter: tournaments, participants, the
// live hand, hand history and the execution lock, all through gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"poker-platform/internal/currency"
	"poker-platform/internal/models"
	domain "poker-platform/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db       *gorm.DB
	currency *currency.Service
}

func New(db *gorm.DB, currencyService *currency.Service) *Store {
	return &Store{db: db, currency: currencyService}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (s *Store) CreateTournament(ctx context.Context, t *domain.Tournament) error {
	rec := tournamentFromDomain(t)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	t.CreatedAt = rec.CreatedAt
	return nil
}

func (s *Store) GetTournament(ctx context.Context, id string) (*domain.Tournament, error) {
	var rec models.Tournament
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	t := tournamentToDomain(rec)
	return &t, nil
}

// ListTournaments returns tournaments in any of statuses, earliest start
// first. With no statuses every tournament is returned.
func (s *Store) ListTournaments(ctx context.Context, statuses ...domain.TournamentStatus) ([]domain.Tournament, error) {
	query := s.db.WithContext(ctx).Order("scheduled_start_time ASC").Order("id ASC")
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, st := range statuses {
			names[i] = string(st)
		}
		query = query.Where("status IN ?", names)
	}

	var recs []models.Tournament
	if err := query.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	out := make([]domain.Tournament, len(recs))
	for i, r := range recs {
		out[i] = tournamentToDomain(r)
	}
	return out, nil
}

// CountOpenByKind counts registering and late-registration tournaments per kind.
func (s *Store) CountOpenByKind(ctx context.Context) (map[domain.Kind]int, error) {
	type row struct {
		Kind  string
		Count int
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&models.Tournament{}).
		Select("kind, COUNT(*) AS count").
		Where("status IN ?", []string{string(domain.StatusRegistering), string(domain.StatusLateRegistration)}).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count open tournaments: %w", err)
	}
	out := make(map[domain.Kind]int, len(rows))
	for _, r := range rows {
		out[domain.Kind(r.Kind)] = r.Count
	}
	return out, nil
}

// AdvanceStatus moves a tournament from one status to a later one. The
// update is conditional on the current status, so two writers racing on
// the same transition cannot both win.
func (s *Store) AdvanceStatus(ctx context.Context, id string, from, to domain.TournamentStatus, now time.Time) error {
	if !from.CanAdvanceTo(to) {
		return fmt.Errorf("illegal status transition %s -> %s", from, to)
	}
	updates := map[string]interface{}{"status": string(to)}
	if to.Playing() {
		updates["started_at"] = gorm.Expr("COALESCE(started_at, ?)", now)
	}
	if to == domain.StatusFinished {
		updates["finished_at"] = now
	}

	res := s.db.WithContext(ctx).Model(&models.Tournament{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to advance tournament %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// ListFinishedBefore returns finished tournaments whose finish time is
// older than cutoff.
func (s *Store) ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]domain.Tournament, error) {
	var recs []models.Tournament
	err := s.db.WithContext(ctx).
		Where("status = ? AND finished_at < ?", string(domain.StatusFinished), cutoff).
		Order("finished_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list finished tournaments: %w", err)
	}
	out := make([]domain.Tournament, len(recs))
	for i, r := range recs {
		out[i] = tournamentToDomain(r)
	}
	return out, nil
}

// PurgeTournament deletes a tournament and everything hanging off it.
func (s *Store) PurgeTournament(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Participant{}, &models.Hand{}, &models.HandHistory{}} {
			if err := tx.Where("tournament_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to purge tournament %s: %w", id, err)
			}
		}
		if err := tx.Where("id = ?", id).Delete(&models.Tournament{}).Error; err != nil {
			return fmt.Errorf("failed to purge tournament %s: %w", id, err)
		}
		return nil
	})
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	rec := models.User{ID: u.ID, Username: u.Username, Balance: u.Balance}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var rec models.User
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, currency.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &domain.User{ID: rec.ID, Username: rec.Username, Balance: rec.Balance}, nil
}

// lockTournament reads the tournament row inside tx with a row lock where
// the dialect supports one.
func lockTournament(tx *gorm.DB, id string) (*models.Tournament, error) {
	var rec models.Tournament
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to lock tournament: %w", err)
	}
	return &rec, nil
}
