package tournament

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// GenerateSlug makes a URL-safe, unique slug for a tournament name.
func GenerateSlug(name string) string {
	return fmt.Sprintf("%s-%s", slug.Make(name), uuid.New().String()[:8])
}

// CalculatePrizePool calculates total prize pool based on buy-in and players
func CalculatePrizePool(buyIn int, playerCount int) int {
	return buyIn * playerCount
}
