package currency

import (
	"context"
	"errors"
	"fmt"

	"poker-platform/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service moves user balances for buy-ins and payouts. Every change writes
// a Transaction row in the same database transaction.
type Service struct {
	db *gorm.DB
}

// NewService creates a new currency service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetBalance retrieves the current balance for a user
func (s *Service) GetBalance(ctx context.Context, userID string) (int, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("balance").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return user.Balance, nil
}

// ValidateAmount checks if a transaction amount is valid
func (s *Service) ValidateAmount(amount int) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if amount < MinimumTransaction {
		return ErrInvalidAmount
	}
	if amount > MaximumTransaction {
		return ErrExceedsMaximum
	}
	return nil
}

// DebitWithTx removes amount from the user's balance inside tx. It fails
// with ErrInsufficientBalance rather than going negative.
func (s *Service) DebitWithTx(ctx context.Context, tx *gorm.DB, userID string, amount int, txType TransactionType, refID, description string) error {
	if err := s.ValidateAmount(amount); err != nil {
		return err
	}
	return s.applyInTx(ctx, tx, userID, -amount, txType, refID, description)
}

// CreditWithTx adds amount to the user's balance inside tx.
func (s *Service) CreditWithTx(ctx context.Context, tx *gorm.DB, userID string, amount int, txType TransactionType, refID, description string) error {
	if err := s.ValidateAmount(amount); err != nil {
		return err
	}
	return s.applyInTx(ctx, tx, userID, amount, txType, refID, description)
}

// Credit is CreditWithTx in its own transaction.
func (s *Service) Credit(ctx context.Context, userID string, amount int, txType TransactionType, refID, description string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.CreditWithTx(ctx, tx, userID, amount, txType, refID, description)
	})
}

func (s *Service) applyInTx(ctx context.Context, tx *gorm.DB, userID string, delta int, txType TransactionType, refID, description string) error {
	var user models.User
	if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to lock user record: %w", err)
	}

	balanceBefore := user.Balance
	balanceAfter := balanceBefore + delta
	if balanceAfter < 0 {
		return ErrInsufficientBalance
	}

	if err := tx.Model(&user).Update("balance", balanceAfter).Error; err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	transaction := Transaction{
		ID:              uuid.New().String(),
		UserID:          userID,
		Amount:          delta,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    balanceAfter,
		TransactionType: txType,
		ReferenceID:     &refID,
		Description:     description,
	}
	if err := tx.Create(&transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction record: %w", err)
	}

	log.Debug().Str("component", "currency").Str("user_id", userID).
		Int("amount", delta).Str("type", string(txType)).Msg("balance updated")
	return nil
}

// GetTransactionHistory retrieves transaction history for a user
func (s *Service) GetTransactionHistory(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	var transactions []Transaction
	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}

	return transactions, nil
}
