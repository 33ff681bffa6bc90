package store

import (
	"context"
	"fmt"
	"time"

	"poker-platform/internal/currency"
	"poker-platform/internal/models"
	domain "poker-platform/models"

	"gorm.io/gorm"
)

// Settlement is what FinishTournament paid out.
type Settlement struct {
	TournamentID string         `json:"tournamentId"`
	Payouts      map[string]int `json:"payouts"`
}

// FinishTournament moves a playing tournament to finished and settles it
// in the same transaction. Cash tables return every human's stack to their
// balance. Tournaments pay the prize pool, the buy-in times the number of
// human entrants, to the winner when the winner is human. It returns nil
// when the tournament had already finished.
func (s *Store) FinishTournament(ctx context.Context, tournamentID string, now time.Time) (*Settlement, error) {
	var settlement *Settlement

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := lockTournament(tx, tournamentID)
		if err != nil {
			return err
		}
		if t.Status == string(domain.StatusFinished) {
			return nil
		}

		res := tx.Model(&models.Tournament{}).
			Where("id = ? AND status = ?", tournamentID, t.Status).
			Updates(map[string]interface{}{"status": string(domain.StatusFinished), "finished_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to finish tournament: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}
		if err := tx.Where("tournament_id = ?", tournamentID).Delete(&models.Hand{}).Error; err != nil {
			return fmt.Errorf("failed to clear hand: %w", err)
		}

		var participants []models.Participant
		if err := tx.Where("tournament_id = ?", tournamentID).Find(&participants).Error; err != nil {
			return fmt.Errorf("failed to load participants: %w", err)
		}

		payouts := make(map[string]int)
		if domain.Kind(t.Kind) == domain.KindCash {
			for _, p := range participants {
				if p.OccupantKind == string(domain.OccupantHuman) && p.Stack > 0 {
					payouts[p.OccupantID] += p.Stack
				}
			}
			for userID, amount := range payouts {
				desc := fmt.Sprintf("Cash out from %s", t.Name)
				if err := s.currency.CreditWithTx(ctx, tx, userID, amount, currency.TxTypeCashGameCashOut, tournamentID, desc); err != nil {
					return err
				}
			}
			err := tx.Model(&models.Participant{}).
				Where("tournament_id = ? AND occupant_kind = ?", tournamentID, string(domain.OccupantHuman)).
				Update("stack", 0).Error
			if err != nil {
				return fmt.Errorf("failed to clear cashed-out stacks: %w", err)
			}
		} else if winner := tournamentWinner(participants); winner != nil && winner.OccupantKind == string(domain.OccupantHuman) {
			entrants := 0
			for _, p := range participants {
				if p.OccupantKind == string(domain.OccupantHuman) {
					entrants++
				}
			}
			if pool := t.BuyIn * entrants; pool > 0 {
				desc := fmt.Sprintf("Prize for winning %s", t.Name)
				if err := s.currency.CreditWithTx(ctx, tx, winner.OccupantID, pool, currency.TxTypeTournamentPrize, tournamentID, desc); err != nil {
					return err
				}
				payouts[winner.OccupantID] = pool
			}
		}

		settlement = &Settlement{TournamentID: tournamentID, Payouts: payouts}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

// tournamentWinner is the active participant with the biggest stack.
func tournamentWinner(participants []models.Participant) *models.Participant {
	var best *models.Participant
	for i := range participants {
		p := &participants[i]
		if p.Status != string(domain.ParticipantActive) {
			continue
		}
		if best == nil || p.Stack > best.Stack {
			best = p
		}
	}
	return best
}
