package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"poker-platform/internal/currency"
	"poker-platform/internal/models"
	domain "poker-platform/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListParticipants returns every participant of a tournament, eliminated
// ones included, by seat number then join order.
func (s *Store) ListParticipants(ctx context.Context, tournamentID string) ([]domain.Participant, error) {
	var recs []models.Participant
	err := s.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("seat_number ASC").Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	out := make([]domain.Participant, len(recs))
	for i, r := range recs {
		out[i] = participantToDomain(r)
	}
	return out, nil
}

func (s *Store) ListBots(ctx context.Context) ([]domain.BotIdentity, error) {
	var recs []models.Bot
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list bots: %w", err)
	}
	out := make([]domain.BotIdentity, len(recs))
	for i, r := range recs {
		out[i] = domain.BotIdentity{ID: r.ID, Name: r.Name}
	}
	return out, nil
}

// claimSeat reserves one seat by bumping seat_count while it is below
// max_players and the tournament is in one of statuses. It returns false
// when no seat could be claimed.
func claimSeat(tx *gorm.DB, tournamentID string, statuses []domain.TournamentStatus) (bool, error) {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	res := tx.Model(&models.Tournament{}).
		Where("id = ? AND seat_count < max_players AND status IN ?", tournamentID, names).
		Update("seat_count", gorm.Expr("seat_count + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim seat: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// freeSeat returns the lowest seat number not held by an active participant.
func freeSeat(tx *gorm.DB, tournamentID string, maxPlayers int) (int, error) {
	var taken []int
	err := tx.Model(&models.Participant{}).
		Where("tournament_id = ? AND status = ?", tournamentID, string(domain.ParticipantActive)).
		Pluck("seat_number", &taken).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read seats: %w", err)
	}
	used := make(map[int]bool, len(taken))
	for _, n := range taken {
		used[n] = true
	}
	for n := 1; n <= maxPlayers; n++ {
		if !used[n] {
			return n, nil
		}
	}
	return 0, ErrTournamentFull
}

func insertParticipant(tx *gorm.DB, p *domain.Participant) error {
	rec := participantFromDomain(p)
	if err := tx.Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	p.CreatedAt = rec.CreatedAt
	return nil
}

// AddBots seats bots from the given list, in order, until the tournament
// is full or the list runs out. Bots already seated are skipped. Returns
// the participants created.
func (s *Store) AddBots(ctx context.Context, tournamentID string, bots []domain.BotIdentity, stack int, statuses ...domain.TournamentStatus) ([]domain.Participant, error) {
	if len(statuses) == 0 {
		statuses = []domain.TournamentStatus{domain.StatusRegistering, domain.StatusLateRegistration, domain.StatusRunning}
	}
	var added []domain.Participant

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := lockTournament(tx, tournamentID)
		if err != nil {
			return err
		}

		var seated []string
		err = tx.Model(&models.Participant{}).
			Where("tournament_id = ? AND occupant_kind = ?", tournamentID, string(domain.OccupantBot)).
			Pluck("occupant_id", &seated).Error
		if err != nil {
			return fmt.Errorf("failed to read seated bots: %w", err)
		}
		skip := make(map[string]bool, len(seated))
		for _, id := range seated {
			skip[id] = true
		}

		for _, b := range bots {
			if skip[b.ID] {
				continue
			}
			ok, err := claimSeat(tx, tournamentID, statuses)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			seat, err := freeSeat(tx, tournamentID, t.MaxPlayers)
			if err != nil {
				return err
			}
			p := domain.Participant{
				ID:           uuid.New().String(),
				TournamentID: tournamentID,
				Occupant:     domain.Bot(b.ID),
				SeatNumber:   seat,
				Stack:        stack,
				Status:       domain.ParticipantActive,
			}
			if err := insertParticipant(tx, &p); err != nil {
				return err
			}
			added = append(added, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// PruneBots removes the most recently seated active bots of a registering
// tournament while its seat count exceeds max_players.
func (s *Store) PruneBots(ctx context.Context, tournamentID string) (int, error) {
	removed := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := lockTournament(tx, tournamentID)
		if err != nil {
			return err
		}
		excess := t.SeatCount - t.MaxPlayers
		if excess <= 0 || t.Status != string(domain.StatusRegistering) {
			return nil
		}

		var ids []string
		err = tx.Model(&models.Participant{}).
			Where("tournament_id = ? AND occupant_kind = ? AND status = ?", tournamentID, string(domain.OccupantBot), string(domain.ParticipantActive)).
			Order("created_at DESC").
			Limit(excess).
			Pluck("id", &ids).Error
		if err != nil {
			return fmt.Errorf("failed to select bots to prune: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Participant{}).Error; err != nil {
			return fmt.Errorf("failed to prune bots: %w", err)
		}
		err = tx.Model(&models.Tournament{}).Where("id = ?", tournamentID).
			Update("seat_count", gorm.Expr("seat_count - ?", len(ids))).Error
		if err != nil {
			return fmt.Errorf("failed to update seat count: %w", err)
		}
		removed = len(ids)
		return nil
	})
	return removed, err
}

// RegisterHuman seats a user and debits the buy-in in one transaction.
// Cash tables take registrations while running; tournaments only while
// registering or in late registration.
func (s *Store) RegisterHuman(ctx context.Context, tournamentID, userID string, now time.Time) (*domain.Participant, error) {
	var p domain.Participant

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := lockTournament(tx, tournamentID)
		if err != nil {
			return err
		}

		statuses := []domain.TournamentStatus{domain.StatusRegistering, domain.StatusLateRegistration}
		if domain.Kind(t.Kind) == domain.KindCash {
			statuses = append(statuses, domain.StatusRunning)
		}
		open := false
		for _, st := range statuses {
			if t.Status == string(st) {
				open = true
			}
		}
		if !open {
			return ErrRegistrationClosed
		}
		if t.Status == string(domain.StatusLateRegistration) && t.LateRegistrationUntil != nil && now.After(*t.LateRegistrationUntil) {
			return ErrRegistrationClosed
		}

		var existing int64
		err = tx.Model(&models.Participant{}).
			Where("tournament_id = ? AND occupant_kind = ? AND occupant_id = ?", tournamentID, string(domain.OccupantHuman), userID).
			Count(&existing).Error
		if err != nil {
			return fmt.Errorf("failed to check registration: %w", err)
		}
		if existing > 0 {
			return ErrAlreadyRegistered
		}

		ok, err := claimSeat(tx, tournamentID, statuses)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTournamentFull
		}
		seat, err := freeSeat(tx, tournamentID, t.MaxPlayers)
		if err != nil {
			return err
		}

		txType := currency.TxTypeTournamentBuyIn
		stack := t.StartingStack
		if domain.Kind(t.Kind) == domain.KindCash {
			txType = currency.TxTypeCashGameBuyIn
			stack = t.BuyIn
		}
		if t.BuyIn > 0 {
			desc := fmt.Sprintf("Buy-in for %s", t.Name)
			if err := s.currency.DebitWithTx(ctx, tx, userID, t.BuyIn, txType, tournamentID, desc); err != nil {
				return err
			}
		}

		p = domain.Participant{
			ID:           uuid.New().String(),
			TournamentID: tournamentID,
			Occupant:     domain.Human(userID),
			SeatNumber:   seat,
			Stack:        stack,
			Status:       domain.ParticipantActive,
		}
		return insertParticipant(tx, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetParticipant looks up one participant of a tournament.
func (s *Store) GetParticipant(ctx context.Context, tournamentID, participantID string) (*domain.Participant, error) {
	var rec models.Participant
	err := s.db.WithContext(ctx).
		First(&rec, "id = ? AND tournament_id = ?", participantID, tournamentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	p := participantToDomain(rec)
	return &p, nil
}
