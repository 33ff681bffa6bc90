package migrations

import (
	"errors"
	"fmt"

	"poker-platform/internal/currency"
	"poker-platform/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultBotNames seeds the bot roster on first start.
var DefaultBotNames = []string{
	"Ace Ventura", "River Rat", "Button Masher", "Check Raiser", "Nit Wit",
	"Donk Kong", "Fold Bot", "Calling Station", "Tight Tim", "Loose Lucy",
	"Big Stack Bo", "Short Stack Sal", "Pocket Rocket", "Gutshot Gus", "Flop Flopper",
	"Turn Turner", "Bluff Buster", "Muck Mike", "Kicker Kate", "Set Miner",
	"Chip Leader", "Rail Bird", "Value Vic", "Overbet Olly",
}

// Run creates or updates every table the platform uses and seeds the bot
// roster when it is empty.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Tournament{},
		&models.Participant{},
		&models.Hand{},
		&models.HandHistory{},
		&models.Bot{},
		&models.ExecutionLock{},
		&currency.Transaction{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}

	seeded, err := SeedBots(db, DefaultBotNames)
	if err != nil {
		return err
	}
	if seeded > 0 {
		log.Info().Str("component", "migrations").Int("bots", seeded).Msg("seeded bot roster")
	}
	return nil
}

// SeedBots inserts any of names not yet in the roster.
func SeedBots(db *gorm.DB, names []string) (int, error) {
	var count int64
	if err := db.Model(&models.Bot{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count bots: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	seeded := 0
	for _, name := range names {
		bot := models.Bot{ID: uuid.New().String(), Name: name}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&bot)
		if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return seeded, fmt.Errorf("failed to seed bot %s: %w", name, res.Error)
		}
		seeded += int(res.RowsAffected)
	}
	return seeded, nil
}
