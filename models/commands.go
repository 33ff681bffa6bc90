package models

// Command is one line on the TCP command port.
type Command struct {
	Command string                 `json:"command"`
	Data    map[string]interface{} `json:"data"`
}

type Response struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ActionRequest is the human action submission payload shared by the HTTP
// and TCP surfaces. UserID is filled by the transport after authentication.
// RequestID is optional; a repeated id is rejected as a duplicate delivery.
type ActionRequest struct {
	TournamentID  string       `json:"tournament_id"`
	ParticipantID string       `json:"participant_id"`
	Action        PlayerAction `json:"action"`
	Amount        int          `json:"amount,omitempty"`
	RequestID     string       `json:"request_id,omitempty"`
	UserID        string       `json:"-"`
}

// TickResult reports what one tick did. Ran is false when the execution
// lock was held elsewhere.
type TickResult struct {
	Ran          bool `json:"ran"`
	Promoted     int  `json:"promoted"`
	HandsStarted int  `json:"handsStarted"`
	BotActions   int  `json:"botActions"`
	Timeouts     int  `json:"timeouts"`
	HandsEnded   int  `json:"handsEnded"`
	SeatsFilled  int  `json:"seatsFilled"`
	Created      int  `json:"created"`
	Purged       int  `json:"purged"`
	Finished     int  `json:"finished"`
	Faults       int  `json:"faults"`
}
