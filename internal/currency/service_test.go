package currency

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"poker-platform/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates a private in-memory SQLite database for one test
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.User{}, &Transaction{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// createTestUser creates a test user with a given balance
func createTestUser(t *testing.T, db *gorm.DB, userID string, balance int) {
	user := models.User{
		ID:       userID,
		Username: "testuser_" + userID,
		Balance:  balance,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
}

// getBalance retrieves a user's balance
func getBalance(t *testing.T, db *gorm.DB, userID string) int {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		t.Fatalf("Failed to get user balance: %v", err)
	}
	return user.Balance
}

func countTransactions(t *testing.T, db *gorm.DB) int64 {
	var n int64
	if err := db.Model(&Transaction{}).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count transactions: %v", err)
	}
	return n
}

// TestDebitWithTx_Success verifies a buy-in debit and its audit record
func TestDebitWithTx_Success(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	ctx := context.Background()

	createTestUser(t, db, "user1", 1000)

	err := db.Transaction(func(tx *gorm.DB) error {
		return service.DebitWithTx(ctx, tx, "user1", 200, TxTypeTournamentBuyIn, "t1", "Tournament entry")
	})
	if err != nil {
		t.Fatalf("DebitWithTx failed: %v", err)
	}

	if balance := getBalance(t, db, "user1"); balance != 800 {
		t.Errorf("Expected balance 800, got %d", balance)
	}

	var rec Transaction
	if err := db.First(&rec, "user_id = ?", "user1").Error; err != nil {
		t.Fatalf("Failed to get transaction record: %v", err)
	}
	if rec.Amount != -200 || rec.BalanceBefore != 1000 || rec.BalanceAfter != 800 {
		t.Errorf("Unexpected audit record: %+v", rec)
	}
}

// TestDebitWithTx_InsufficientBalance verifies nothing is written on failure
func TestDebitWithTx_InsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	ctx := context.Background()

	createTestUser(t, db, "user1", 100)

	err := db.Transaction(func(tx *gorm.DB) error {
		return service.DebitWithTx(ctx, tx, "user1", 200, TxTypeTournamentBuyIn, "t1", "Tournament entry")
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
	}

	if balance := getBalance(t, db, "user1"); balance != 100 {
		t.Errorf("Balance changed after failed debit: %d", balance)
	}
	if n := countTransactions(t, db); n != 0 {
		t.Errorf("Expected 0 transaction records, got %d", n)
	}
}

// TestDebitWithTx_Rollback verifies the debit follows the caller's transaction
func TestDebitWithTx_Rollback(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	ctx := context.Background()

	createTestUser(t, db, "user1", 1000)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := service.DebitWithTx(ctx, tx, "user1", 200, TxTypeCashGameBuyIn, "t1", "Buy in"); err != nil {
			return err
		}
		// Force rollback by returning error
		return gorm.ErrInvalidTransaction
	})
	if err == nil {
		t.Fatal("Expected transaction to rollback, got nil error")
	}

	if balance := getBalance(t, db, "user1"); balance != 1000 {
		t.Errorf("Expected balance 1000 after rollback, got %d", balance)
	}
	if n := countTransactions(t, db); n != 0 {
		t.Errorf("Expected 0 transaction records after rollback, got %d", n)
	}
}

// TestCredit_Success verifies a standalone payout
func TestCredit_Success(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	ctx := context.Background()

	createTestUser(t, db, "user1", 500)

	if err := service.Credit(ctx, "user1", 300, TxTypeTournamentPrize, "t1", "Prize"); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	balance, err := service.GetBalance(ctx, "user1")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != 800 {
		t.Errorf("Expected balance 800, got %d", balance)
	}

	history, err := service.GetTransactionHistory(ctx, "user1", 10)
	if err != nil {
		t.Fatalf("GetTransactionHistory failed: %v", err)
	}
	if len(history) != 1 || history[0].Amount != 300 {
		t.Errorf("Unexpected history: %+v", history)
	}
}

// TestCredit_UnknownUser verifies the not-found mapping
func TestCredit_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	err := service.Credit(context.Background(), "ghost", 10, TxTypeCashGameCashOut, "t1", "Cash out")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound, got %v", err)
	}
}

// TestCoordinatedOperations_PartialFailure verifies rollback on partial failure
func TestCoordinatedOperations_PartialFailure(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	ctx := context.Background()

	createTestUser(t, db, "user1", 1000)
	createTestUser(t, db, "user2", 500)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := service.CreditWithTx(ctx, tx, "user1", 200, TxTypeCashGameCashOut, "t1", "Cash out"); err != nil {
			return err
		}
		return service.DebitWithTx(ctx, tx, "user2", 1000, TxTypeCashGameBuyIn, "t1", "Buy in")
	})
	if err == nil {
		t.Fatal("Expected transaction to fail, got nil error")
	}

	if balance := getBalance(t, db, "user1"); balance != 1000 {
		t.Errorf("User1 balance changed after rollback: %d", balance)
	}
	if balance := getBalance(t, db, "user2"); balance != 500 {
		t.Errorf("User2 balance changed after rollback: %d", balance)
	}
	if n := countTransactions(t, db); n != 0 {
		t.Errorf("Expected 0 transaction records after rollback, got %d", n)
	}
}

// TestValidateAmount_EdgeCases tests amount validation
func TestValidateAmount_EdgeCases(t *testing.T) {
	service := NewService(nil) // No DB needed for validation

	tests := []struct {
		name    string
		amount  int
		wantErr bool
	}{
		{"Valid amount", 100, false},
		{"Negative amount", -50, true},
		{"Zero amount", 0, true},
		{"Minimum amount", MinimumTransaction, false},
		{"Above maximum", MaximumTransaction + 1, true},
		{"Maximum amount", MaximumTransaction, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidateAmount(tt.amount)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAmount(%d) error = %v, wantErr %v", tt.amount, err, tt.wantErr)
			}
		})
	}
}
