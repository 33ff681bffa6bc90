package tournament

import (
	"time"

	"poker-platform/internal/models"
	domain "poker-platform/models"
)

// CashBlinds is the single fixed level of a cash table: a big blind of a
// fiftieth of the buy-in, never below 2.
func CashBlinds(buyIn int) models.BlindLevel {
	bb := buyIn / 50
	if bb < 2 {
		bb = 2
	}
	return models.BlindLevel{Level: 1, SmallBlind: bb / 2, BigBlind: bb}
}

// BlindsAt returns the level in force at now. Levels advance by elapsed
// time since the tournament started and stay on the last level once the
// structure runs out.
func BlindsAt(t *domain.Tournament, now time.Time) (models.BlindLevel, error) {
	if t.Kind == domain.KindCash {
		return CashBlinds(t.BuyIn), nil
	}
	structure, err := GetStructurePreset(t.Structure)
	if err != nil {
		return models.BlindLevel{}, err
	}

	if t.StartedAt == nil || now.Before(*t.StartedAt) {
		return structure.BlindLevels[0], nil
	}
	elapsed := now.Sub(*t.StartedAt)
	for _, level := range structure.BlindLevels {
		d := time.Duration(level.Duration) * time.Second
		if elapsed < d {
			return level, nil
		}
		elapsed -= d
	}
	return structure.BlindLevels[len(structure.BlindLevels)-1], nil
}

// TimeUntilNextLevel is how long the current level has left, or zero on
// the last level.
func TimeUntilNextLevel(t *domain.Tournament, now time.Time) time.Duration {
	if t.Kind == domain.KindCash || t.StartedAt == nil {
		return 0
	}
	structure, err := GetStructurePreset(t.Structure)
	if err != nil {
		return 0
	}
	elapsed := now.Sub(*t.StartedAt)
	for _, level := range structure.BlindLevels {
		d := time.Duration(level.Duration) * time.Second
		if elapsed < d {
			return d - elapsed
		}
		elapsed -= d
	}
	return 0
}
