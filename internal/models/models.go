package models

import (
	"time"
)

// User is a platform account. Only the balance is touched by the core.
type User struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Username  string    `gorm:"column:username;type:varchar(50);uniqueIndex;not null" json:"username"`
	Balance   int       `gorm:"column:balance;not null" json:"balance"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// Tournament is one table lifecycle: a cash table, sit-and-go, scheduled
// event or spin-and-go.
type Tournament struct {
	ID                    string     `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Name                  string     `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Slug                  string     `gorm:"column:slug;type:varchar(140);uniqueIndex;not null" json:"slug"`
	Kind                  string     `gorm:"column:kind;type:varchar(20);not null;index:idx_kind_status" json:"kind"`
	Status                string     `gorm:"column:status;type:varchar(20);not null;index:idx_kind_status;index:idx_status" json:"status"`
	Structure             string     `gorm:"column:structure;type:varchar(30);not null" json:"structure"`
	BuyIn                 int        `gorm:"column:buy_in;not null" json:"buy_in"`
	StartingStack         int        `gorm:"column:starting_stack;not null" json:"starting_stack"`
	MinPlayers            int        `gorm:"column:min_players;not null" json:"min_players"`
	MaxPlayers            int        `gorm:"column:max_players;not null" json:"max_players"`
	SeatCount             int        `gorm:"column:seat_count;not null" json:"seat_count"`
	ScheduledStartTime    time.Time  `gorm:"column:scheduled_start_time;not null;index" json:"scheduled_start_time"`
	LateRegistrationUntil *time.Time `gorm:"column:late_registration_until" json:"late_registration_until,omitempty"`
	ButtonSeat            int        `gorm:"column:button_seat;not null" json:"button_seat"`
	HandsPlayed           int        `gorm:"column:hands_played;not null" json:"hands_played"`
	StartedAt             *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	FinishedAt            *time.Time `gorm:"column:finished_at;index" json:"finished_at,omitempty"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Tournament model
func (Tournament) TableName() string {
	return "tournaments"
}

// Participant is a seat holder. Exactly one occupant kind is set; the pair
// is unique per tournament so a user or bot can only sit once.
type Participant struct {
	ID           string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	TournamentID string    `gorm:"column:tournament_id;type:varchar(36);not null;index:idx_participant_tournament;uniqueIndex:unique_participant_occupant" json:"tournament_id"`
	OccupantKind string    `gorm:"column:occupant_kind;type:varchar(10);not null;uniqueIndex:unique_participant_occupant" json:"occupant_kind"`
	OccupantID   string    `gorm:"column:occupant_id;type:varchar(36);not null;uniqueIndex:unique_participant_occupant" json:"occupant_id"`
	SeatNumber   int       `gorm:"column:seat_number;not null" json:"seat_number"`
	Stack        int       `gorm:"column:stack;not null" json:"stack"`
	Status       string    `gorm:"column:status;type:varchar(20);not null" json:"status"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime:milli" json:"created_at"`
}

// TableName specifies the table name for Participant model
func (Participant) TableName() string {
	return "participants"
}

// Hand holds the one live hand of a tournament as a JSON document. The
// tournament id is the primary key, which is what keeps it to one hand per
// tournament. Version is bumped on every write for optimistic concurrency.
type Hand struct {
	TournamentID string    `gorm:"column:tournament_id;type:varchar(36);primaryKey" json:"tournament_id"`
	HandNumber   int       `gorm:"column:hand_number;not null" json:"hand_number"`
	Version      int       `gorm:"column:version;not null" json:"version"`
	Concluded    bool      `gorm:"column:concluded;not null" json:"concluded"`
	State        string    `gorm:"column:state;type:text;not null" json:"-"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for Hand model
func (Hand) TableName() string {
	return "hands"
}

// HandHistory is written once when a hand concludes and never updated.
type HandHistory struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TournamentID   string    `gorm:"column:tournament_id;type:varchar(36);not null;uniqueIndex:unique_history_hand" json:"tournament_id"`
	HandNumber     int       `gorm:"column:hand_number;not null;uniqueIndex:unique_history_hand" json:"hand_number"`
	Pot            int       `gorm:"column:pot;not null" json:"pot"`
	Winners        string    `gorm:"column:winners;type:text;not null" json:"winners"`
	CommunityCards string    `gorm:"column:community_cards;type:text;not null" json:"community_cards"`
	HandLabel      string    `gorm:"column:hand_label;type:varchar(50)" json:"hand_label"`
	CreatedAt      time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName specifies the table name for HandHistory model
func (HandHistory) TableName() string {
	return "hand_histories"
}

// Bot is one entry of the bot roster used for seat fill.
type Bot struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(50);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for Bot model
func (Bot) TableName() string {
	return "bots"
}

// ExecutionLock is a named mutual-exclusion record. A row whose expiry has
// passed is treated as absent.
type ExecutionLock struct {
	Key         string `gorm:"column:lock_key;type:varchar(64);primaryKey" json:"key"`
	Holder      string `gorm:"column:holder;type:varchar(80);not null" json:"holder"`
	ExpiresAtMs int64  `gorm:"column:expires_at_ms;not null" json:"expires_at_ms"`
}

// TableName specifies the table name for ExecutionLock model
func (ExecutionLock) TableName() string {
	return "execution_locks"
}

// BlindLevel represents a blind level in a tournament structure
type BlindLevel struct {
	Level      int `json:"level"`
	SmallBlind int `json:"small_blind"`
	BigBlind   int `json:"big_blind"`
	Duration   int `json:"duration"` // Duration in seconds
}

// TournamentStructure represents the complete blind schedule
type TournamentStructure struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	BlindLevels []BlindLevel `json:"blind_levels"`
}
