package models

import (
	"fmt"
	"time"
)

type Kind string

const (
	KindCash      Kind = "cash"
	KindSitAndGo  Kind = "sit_and_go"
	KindScheduled Kind = "scheduled"
	KindSpinAndGo Kind = "spin_and_go"
)

var AllKinds = []Kind{KindCash, KindSitAndGo, KindScheduled, KindSpinAndGo}

type TournamentStatus string

const (
	StatusRegistering      TournamentStatus = "registering"
	StatusLateRegistration TournamentStatus = "late_registration"
	StatusRunning          TournamentStatus = "running"
	StatusFinished         TournamentStatus = "finished"
)

var statusOrder = map[TournamentStatus]int{
	StatusRegistering:      0,
	StatusLateRegistration: 1,
	StatusRunning:          2,
	StatusFinished:         3,
}

// CanAdvanceTo reports whether moving from s to next is a forward transition.
func (s TournamentStatus) CanAdvanceTo(next TournamentStatus) bool {
	from, ok1 := statusOrder[s]
	to, ok2 := statusOrder[next]
	return ok1 && ok2 && to > from
}

// Open reports whether the tournament still accepts registrations.
func (s TournamentStatus) Open() bool {
	return s == StatusRegistering || s == StatusLateRegistration
}

// Playing reports whether hands are dealt in this status.
func (s TournamentStatus) Playing() bool {
	return s == StatusRunning || s == StatusLateRegistration
}

type Tournament struct {
	ID                    string           `json:"id"`
	Name                  string           `json:"name"`
	Slug                  string           `json:"slug"`
	Kind                  Kind             `json:"kind"`
	Status                TournamentStatus `json:"status"`
	Structure             string           `json:"structure"`
	BuyIn                 int              `json:"buyIn"`
	StartingStack         int              `json:"startingStack"`
	MinPlayers            int              `json:"minPlayers"`
	MaxPlayers            int              `json:"maxPlayers"`
	SeatCount             int              `json:"seatCount"`
	ScheduledStartTime    time.Time        `json:"scheduledStartTime"`
	LateRegistrationUntil *time.Time       `json:"lateRegistrationUntil,omitempty"`
	ButtonSeat            int              `json:"buttonSeat"`
	HandsPlayed           int              `json:"handsPlayed"`
	StartedAt             *time.Time       `json:"startedAt,omitempty"`
	FinishedAt            *time.Time       `json:"finishedAt,omitempty"`
	CreatedAt             time.Time        `json:"createdAt"`
}

// Full reports whether every seat is taken.
func (t *Tournament) Full() bool { return t.SeatCount >= t.MaxPlayers }

type OccupantKind string

const (
	OccupantHuman OccupantKind = "human"
	OccupantBot   OccupantKind = "bot"
)

// Occupant identifies who sits in a seat: exactly one human or one bot.
type Occupant struct {
	Kind OccupantKind `json:"kind"`
	ID   string       `json:"id"`
}

func Human(userID string) Occupant { return Occupant{Kind: OccupantHuman, ID: userID} }
func Bot(botID string) Occupant    { return Occupant{Kind: OccupantBot, ID: botID} }

func (o Occupant) IsBot() bool   { return o.Kind == OccupantBot }
func (o Occupant) IsHuman() bool { return o.Kind == OccupantHuman }

func (o Occupant) String() string { return fmt.Sprintf("%s:%s", o.Kind, o.ID) }

func (o Occupant) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("occupant id is empty")
	}
	if o.Kind != OccupantHuman && o.Kind != OccupantBot {
		return fmt.Errorf("unknown occupant kind %q", o.Kind)
	}
	return nil
}

type ParticipantStatus string

const (
	ParticipantActive     ParticipantStatus = "active"
	ParticipantEliminated ParticipantStatus = "eliminated"
)

type Participant struct {
	ID           string            `json:"id"`
	TournamentID string            `json:"tournamentId"`
	Occupant     Occupant          `json:"occupant"`
	SeatNumber   int               `json:"seatNumber"`
	Stack        int               `json:"stack"`
	Status       ParticipantStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// User is the slice of a platform account the core touches: its balance.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Balance  int    `json:"balance"`
}

// BotIdentity is one entry of the bot roster.
type BotIdentity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
