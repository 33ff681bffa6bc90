package currency

import (
	"errors"
	"time"
)

// Constants for currency system
const (
	DefaultStartingBalance = 10000
	MinimumTransaction     = 1
	MaximumTransaction     = 1000000000
)

// TransactionType represents the type of balance movement
type TransactionType string

const (
	TxTypeTournamentBuyIn TransactionType = "tournament_buy_in"
	TxTypeTournamentPrize TransactionType = "tournament_prize"
	TxTypeCashGameBuyIn   TransactionType = "cash_game_buy_in"
	TxTypeCashGameCashOut TransactionType = "cash_game_cash_out"
)

// Transaction is the audit record written next to every balance change.
type Transaction struct {
	ID              string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID          string          `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Amount          int             `gorm:"not null" json:"amount"`
	BalanceBefore   int             `gorm:"not null" json:"balance_before"`
	BalanceAfter    int             `gorm:"not null" json:"balance_after"`
	TransactionType TransactionType `gorm:"type:varchar(50);not null;index" json:"transaction_type"`
	ReferenceID     *string         `gorm:"type:varchar(36);index" json:"reference_id,omitempty"`
	Description     string          `gorm:"type:text" json:"description,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Transaction) TableName() string {
	return "balance_transactions"
}

// Errors
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid transaction amount")
	ErrNegativeAmount      = errors.New("amount cannot be negative")
	ErrExceedsMaximum      = errors.New("amount exceeds maximum transaction limit")
	ErrUserNotFound        = errors.New("user not found")
)
