package tournament

import "errors"

// Tournament errors
var (
	// Structure validation errors
	ErrEmptyBlindStructure  = errors.New("blind structure cannot be empty")
	ErrInvalidBlindAmounts  = errors.New("blind amounts must be positive")
	ErrBigBlindTooSmall     = errors.New("big blind must be greater than small blind")
	ErrInvalidLevelDuration = errors.New("level duration must be positive")
	ErrBlindsNotIncreasing  = errors.New("blinds must increase with each level")
	ErrStructureNotFound    = errors.New("tournament structure preset not found")

	// Preset errors
	ErrUnknownKind        = errors.New("unknown tournament kind")
	ErrInvalidBuyInTiers  = errors.New("preset needs at least one non-negative buy-in tier")
	ErrInvalidMinPlayers  = errors.New("min players must be at least 2")
	ErrMinPlayersAboveMax = errors.New("min players cannot exceed max players")
)
