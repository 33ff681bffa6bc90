package store

import (
	"context"
	"errors"
	"fmt"

	"poker-platform/internal/models"
	domain "poker-platform/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetHand loads the live hand of a tournament.
func (s *Store) GetHand(ctx context.Context, tournamentID string) (*domain.HandState, error) {
	var rec models.Hand
	if err := s.db.WithContext(ctx).First(&rec, "tournament_id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHandNotFound
		}
		return nil, fmt.Errorf("failed to get hand: %w", err)
	}
	return handToDomain(rec)
}

// CreateHand inserts a new live hand at version 1. The tournament id is
// the primary key, so a second live hand fails with ErrHandExists.
func (s *Store) CreateHand(ctx context.Context, h *domain.HandState) error {
	h.Version = 1
	rec, err := handFromDomain(h)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		h.Version = 0
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrHandExists
		}
		return fmt.Errorf("failed to create hand: %w", err)
	}
	return nil
}

// SaveHand writes h if the stored version still equals h.Version, then
// bumps the version. A lost race returns ErrVersionConflict and leaves h
// at its old version.
func (s *Store) SaveHand(ctx context.Context, h *domain.HandState) error {
	prev := h.Version
	h.Version = prev + 1
	rec, err := handFromDomain(h)
	if err != nil {
		h.Version = prev
		return err
	}

	res := s.db.WithContext(ctx).Model(&models.Hand{}).
		Where("tournament_id = ? AND version = ?", h.TournamentID, prev).
		Updates(map[string]interface{}{
			"hand_number": rec.HandNumber,
			"version":     rec.Version,
			"concluded":   rec.Concluded,
			"state":       rec.State,
			"updated_at":  rec.UpdatedAt,
		})
	if res.Error != nil {
		h.Version = prev
		return fmt.Errorf("failed to save hand: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		h.Version = prev
		return ErrVersionConflict
	}
	return nil
}

// ConcludeHand archives a concluded hand in one transaction: the history
// row is written, participant stacks are copied from the seats (busted
// seats are eliminated and free their seat), the tournament's hand count
// and button move on, and the live hand is deleted.
//
// A hand with Version 0 was never stored; it only needs the history row to
// be unique.
func (s *Store) ConcludeHand(ctx context.Context, h *domain.HandState) (*domain.HandHistory, error) {
	if !h.Concluded {
		return nil, fmt.Errorf("hand %d of %s is not concluded", h.HandNumber, h.TournamentID)
	}
	pot := 0
	for _, w := range h.Winners {
		pot += w.Amount
	}
	rec, err := historyFromHand(h, pot)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if h.Version > 0 {
			res := tx.Where("tournament_id = ? AND version = ?", h.TournamentID, h.Version).Delete(&models.Hand{})
			if res.Error != nil {
				return fmt.Errorf("failed to delete hand: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrVersionConflict
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error; err != nil {
				return fmt.Errorf("failed to write history: %w", err)
			}
		} else if err := tx.Create(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrVersionConflict
			}
			return fmt.Errorf("failed to write history: %w", err)
		}

		busted := 0
		for _, seat := range h.Seats {
			updates := map[string]interface{}{"stack": seat.Stack}
			if seat.Stack == 0 {
				updates["status"] = string(domain.ParticipantEliminated)
			}
			res := tx.Model(&models.Participant{}).
				Where("id = ? AND tournament_id = ? AND status = ?", seat.ParticipantID, h.TournamentID, string(domain.ParticipantActive)).
				Updates(updates)
			if res.Error != nil {
				return fmt.Errorf("failed to update participant %s: %w", seat.ParticipantID, res.Error)
			}
			if seat.Stack == 0 && res.RowsAffected == 1 {
				busted++
			}
		}

		tournamentUpdates := map[string]interface{}{
			"hands_played": gorm.Expr("hands_played + 1"),
			"seat_count":   gorm.Expr("seat_count - ?", busted),
		}
		if h.DealerPosition >= 0 && h.DealerPosition < len(h.Seats) {
			tournamentUpdates["button_seat"] = h.Seats[h.DealerPosition].SeatNumber
		}
		err := tx.Model(&models.Tournament{}).Where("id = ?", h.TournamentID).Updates(tournamentUpdates).Error
		if err != nil {
			return fmt.Errorf("failed to update tournament: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out, err := historyToDomain(rec)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListHistory returns the most recent concluded hands of a tournament,
// newest first.
func (s *Store) ListHistory(ctx context.Context, tournamentID string, limit int) ([]domain.HandHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var recs []models.HandHistory
	err := s.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("hand_number DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	out := make([]domain.HandHistory, 0, len(recs))
	for _, r := range recs {
		hh, err := historyToDomain(r)
		if err != nil {
			return nil, err
		}
		out = append(out, hh)
	}
	return out, nil
}

// ListHands returns every live hand, oldest tournament id first.
func (s *Store) ListHands(ctx context.Context) ([]*domain.HandState, error) {
	var recs []models.Hand
	if err := s.db.WithContext(ctx).Order("tournament_id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list hands: %w", err)
	}
	out := make([]*domain.HandState, 0, len(recs))
	for _, r := range recs {
		h, err := handToDomain(r)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// DeleteHand drops the live hand at version without settling it. Stacks
// are only written when a hand concludes, so every seat keeps what it had
// before the hand was dealt.
func (s *Store) DeleteHand(ctx context.Context, tournamentID string, version int) error {
	res := s.db.WithContext(ctx).
		Where("tournament_id = ? AND version = ?", tournamentID, version).
		Delete(&models.Hand{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete hand: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}
