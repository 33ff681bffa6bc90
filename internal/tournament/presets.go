package tournament

import (
	"fmt"
	"time"

	"poker-platform/internal/models"
	domain "poker-platform/models"
)

// Predefined Tournament Structures
var (
	// TurboStructure - Fast blind increases (5-minute levels)
	TurboStructure = models.TournamentStructure{
		Name:        "turbo",
		Description: "Fast-paced tournament with 5-minute blind levels",
		BlindLevels: []models.BlindLevel{
			{Level: 1, SmallBlind: 10, BigBlind: 20, Duration: 300},
			{Level: 2, SmallBlind: 15, BigBlind: 30, Duration: 300},
			{Level: 3, SmallBlind: 25, BigBlind: 50, Duration: 300},
			{Level: 4, SmallBlind: 50, BigBlind: 100, Duration: 300},
			{Level: 5, SmallBlind: 75, BigBlind: 150, Duration: 300},
			{Level: 6, SmallBlind: 100, BigBlind: 200, Duration: 300},
			{Level: 7, SmallBlind: 150, BigBlind: 300, Duration: 300},
			{Level: 8, SmallBlind: 200, BigBlind: 400, Duration: 300},
			{Level: 9, SmallBlind: 300, BigBlind: 600, Duration: 300},
			{Level: 10, SmallBlind: 400, BigBlind: 800, Duration: 300},
			{Level: 11, SmallBlind: 600, BigBlind: 1200, Duration: 300},
			{Level: 12, SmallBlind: 800, BigBlind: 1600, Duration: 300},
		},
	}

	// StandardStructure - Regular blind increases (10-minute levels)
	StandardStructure = models.TournamentStructure{
		Name:        "standard",
		Description: "Standard tournament with 10-minute blind levels",
		BlindLevels: []models.BlindLevel{
			{Level: 1, SmallBlind: 10, BigBlind: 20, Duration: 600},
			{Level: 2, SmallBlind: 15, BigBlind: 30, Duration: 600},
			{Level: 3, SmallBlind: 25, BigBlind: 50, Duration: 600},
			{Level: 4, SmallBlind: 50, BigBlind: 100, Duration: 600},
			{Level: 5, SmallBlind: 75, BigBlind: 150, Duration: 600},
			{Level: 6, SmallBlind: 100, BigBlind: 200, Duration: 600},
			{Level: 7, SmallBlind: 150, BigBlind: 300, Duration: 600},
			{Level: 8, SmallBlind: 200, BigBlind: 400, Duration: 600},
			{Level: 9, SmallBlind: 300, BigBlind: 600, Duration: 600},
			{Level: 10, SmallBlind: 400, BigBlind: 800, Duration: 600},
		},
	}

	// DeepStackStructure - Slow blind increases (15-minute levels)
	DeepStackStructure = models.TournamentStructure{
		Name:        "deep_stack",
		Description: "Deep stack tournament with 15-minute blind levels",
		BlindLevels: []models.BlindLevel{
			{Level: 1, SmallBlind: 5, BigBlind: 10, Duration: 900},
			{Level: 2, SmallBlind: 10, BigBlind: 20, Duration: 900},
			{Level: 3, SmallBlind: 15, BigBlind: 30, Duration: 900},
			{Level: 4, SmallBlind: 25, BigBlind: 50, Duration: 900},
			{Level: 5, SmallBlind: 50, BigBlind: 100, Duration: 900},
			{Level: 6, SmallBlind: 75, BigBlind: 150, Duration: 900},
			{Level: 7, SmallBlind: 100, BigBlind: 200, Duration: 900},
			{Level: 8, SmallBlind: 150, BigBlind: 300, Duration: 900},
		},
	}

	// HyperTurboStructure - Ultra-fast blind increases (3-minute levels)
	HyperTurboStructure = models.TournamentStructure{
		Name:        "hyper_turbo",
		Description: "Lightning-fast tournament with 3-minute blind levels",
		BlindLevels: []models.BlindLevel{
			{Level: 1, SmallBlind: 10, BigBlind: 20, Duration: 180},
			{Level: 2, SmallBlind: 15, BigBlind: 30, Duration: 180},
			{Level: 3, SmallBlind: 25, BigBlind: 50, Duration: 180},
			{Level: 4, SmallBlind: 50, BigBlind: 100, Duration: 180},
			{Level: 5, SmallBlind: 75, BigBlind: 150, Duration: 180},
			{Level: 6, SmallBlind: 100, BigBlind: 200, Duration: 180},
			{Level: 7, SmallBlind: 150, BigBlind: 300, Duration: 180},
			{Level: 8, SmallBlind: 200, BigBlind: 400, Duration: 180},
			{Level: 9, SmallBlind: 300, BigBlind: 600, Duration: 180},
			{Level: 10, SmallBlind: 500, BigBlind: 1000, Duration: 180},
		},
	}
)

// StructurePresets maps structure names to their configurations
var StructurePresets = map[string]models.TournamentStructure{
	TurboStructure.Name:      TurboStructure,
	StandardStructure.Name:   StandardStructure,
	DeepStackStructure.Name:  DeepStackStructure,
	HyperTurboStructure.Name: HyperTurboStructure,
}

// KindPreset holds the defaults new tournaments of one kind are created
// with. BuyInTiers are used in rotation.
type KindPreset struct {
	Kind          domain.Kind
	NamePrefix    string
	BuyInTiers    []int
	MinPlayers    int
	MaxPlayers    int
	StartLead     time.Duration
	Stagger       time.Duration
	LateRegWindow time.Duration
	StartingStack int
	Structure     string
}

// KindPresets are the supply defaults per kind. Cash tables seat the
// buy-in as the stack, so StartingStack is unused for them.
var KindPresets = map[domain.Kind]KindPreset{
	domain.KindCash: {
		Kind:       domain.KindCash,
		NamePrefix: "Cash Table",
		BuyInTiers: []int{200, 500, 1000, 2500},
		MinPlayers: 2,
		MaxPlayers: 6,
		StartLead:  30 * time.Second,
		Stagger:    15 * time.Second,
	},
	domain.KindSitAndGo: {
		Kind:          domain.KindSitAndGo,
		NamePrefix:    "Sit & Go",
		BuyInTiers:    []int{50, 100, 250},
		MinPlayers:    2,
		MaxPlayers:    6,
		StartLead:     2 * time.Minute,
		Stagger:       time.Minute,
		StartingStack: 1500,
		Structure:     TurboStructure.Name,
	},
	domain.KindScheduled: {
		Kind:          domain.KindScheduled,
		NamePrefix:    "Scheduled",
		BuyInTiers:    []int{100, 500, 1000},
		MinPlayers:    2,
		MaxPlayers:    9,
		StartLead:     10 * time.Minute,
		Stagger:       5 * time.Minute,
		LateRegWindow: 10 * time.Minute,
		StartingStack: 1500,
		Structure:     StandardStructure.Name,
	},
	domain.KindSpinAndGo: {
		Kind:          domain.KindSpinAndGo,
		NamePrefix:    "Spin & Go",
		BuyInTiers:    []int{25, 50, 100},
		MinPlayers:    3,
		MaxPlayers:    3,
		StartLead:     time.Minute,
		Stagger:       30 * time.Second,
		StartingStack: 1500,
		Structure:     HyperTurboStructure.Name,
	},
}

// GetStructurePreset retrieves a tournament structure by name. A preset
// that fails ValidateStructure is never handed out.
func GetStructurePreset(name string) (models.TournamentStructure, error) {
	preset, ok := StructurePresets[name]
	if !ok {
		return models.TournamentStructure{}, ErrStructureNotFound
	}
	if err := ValidateStructure(preset); err != nil {
		return models.TournamentStructure{}, fmt.Errorf("structure %s: %w", name, err)
	}
	return preset, nil
}

// GetKindPreset retrieves the supply defaults of a kind
func GetKindPreset(kind domain.Kind) (KindPreset, error) {
	preset, ok := KindPresets[kind]
	if !ok {
		return KindPreset{}, ErrUnknownKind
	}
	return preset, nil
}

// ValidateStructure validates a tournament structure
func ValidateStructure(structure models.TournamentStructure) error {
	if len(structure.BlindLevels) == 0 {
		return ErrEmptyBlindStructure
	}

	for i, level := range structure.BlindLevels {
		if level.SmallBlind <= 0 || level.BigBlind <= 0 {
			return ErrInvalidBlindAmounts
		}
		if level.BigBlind <= level.SmallBlind {
			return ErrBigBlindTooSmall
		}
		if level.Duration <= 0 {
			return ErrInvalidLevelDuration
		}
		if i > 0 && level.BigBlind <= structure.BlindLevels[i-1].BigBlind {
			return ErrBlindsNotIncreasing
		}
	}

	return nil
}

// ValidateKindPreset checks a preset before supply uses it.
func ValidateKindPreset(p KindPreset) error {
	if len(p.BuyInTiers) == 0 {
		return ErrInvalidBuyInTiers
	}
	for _, b := range p.BuyInTiers {
		if b < 0 {
			return ErrInvalidBuyInTiers
		}
	}
	if p.MinPlayers < 2 {
		return ErrInvalidMinPlayers
	}
	if p.MinPlayers > p.MaxPlayers {
		return ErrMinPlayersAboveMax
	}
	if p.Kind != domain.KindCash {
		if _, ok := StructurePresets[p.Structure]; !ok {
			return ErrStructureNotFound
		}
	}
	return nil
}
