package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"poker-platform/internal/recovery"
	"poker-platform/models"
)

type Tournaments interface {
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
	ListTournaments(ctx context.Context, statuses ...models.TournamentStatus) ([]models.Tournament, error)
	ListParticipants(ctx context.Context, tournamentID string) ([]models.Participant, error)
}

type Games interface {
	SubmitAction(ctx context.Context, req models.ActionRequest) (*models.HandState, error)
	NextHand(ctx context.Context, tournamentID string, now time.Time) (*models.HandState, bool, error)
	View(ctx context.Context, tournamentID, viewerParticipantID string) (*models.HandState, error)
}

type Ticker interface {
	Run(ctx context.Context) (models.TickResult, error)
}

type Recovery interface {
	Scan(ctx context.Context) (recovery.Report, error)
	VoidFaultedHand(ctx context.Context, tournamentID string) (*models.HandState, error)
}

// CommandHandler serves the operator command port. Callers are trusted:
// actions carry no user id, so any human seat can be driven. Bot seats
// still belong to the tick.
type CommandHandler struct {
	tournaments Tournaments
	games       Games
	ticker      Ticker
	recovery    Recovery
	now         func() time.Time
}

func NewCommandHandler(tournaments Tournaments, games Games, ticker Ticker, rec Recovery) *CommandHandler {
	return &CommandHandler{
		tournaments: tournaments,
		games:       games,
		ticker:      ticker,
		recovery:    rec,
		now:         time.Now,
	}
}

func (h *CommandHandler) Handle(ctx context.Context, cmd models.Command) models.Response {
	switch cmd.Command {
	case "tournament.list":
		return h.handleListTournaments(ctx, cmd.Data)
	case "tournament.get":
		return h.handleGetTournament(ctx, cmd.Data)
	case "game.nextHand":
		return h.handleNextHand(ctx, cmd.Data)
	case "game.action":
		return h.handleGameAction(ctx, cmd.Data)
	case "game.view":
		return h.handleView(ctx, cmd.Data)
	case "tick.run":
		return h.handleTick(ctx)
	case "recovery.scan":
		return h.handleScan(ctx)
	case "recovery.voidHand":
		return h.handleVoidHand(ctx, cmd.Data)
	default:
		return models.Response{Success: false, Error: fmt.Sprintf("unknown command: %s", cmd.Command)}
	}
}

func failure(err error) models.Response {
	return models.Response{Success: false, Error: err.Error()}
}

func (h *CommandHandler) handleListTournaments(ctx context.Context, data map[string]interface{}) models.Response {
	var statuses []models.TournamentStatus
	if raw := getString(data, "status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, models.TournamentStatus(strings.TrimSpace(s)))
		}
	}
	tournaments, err := h.tournaments.ListTournaments(ctx, statuses...)
	if err != nil {
		return failure(err)
	}
	return models.Response{Success: true, Data: map[string]interface{}{"tournaments": tournaments}}
}

func (h *CommandHandler) handleGetTournament(ctx context.Context, data map[string]interface{}) models.Response {
	id := getString(data, "tournamentId")
	t, err := h.tournaments.GetTournament(ctx, id)
	if err != nil {
		return failure(err)
	}
	participants, err := h.tournaments.ListParticipants(ctx, id)
	if err != nil {
		return failure(err)
	}
	return models.Response{Success: true, Data: map[string]interface{}{
		"tournament":   t,
		"participants": participants,
	}}
}

func (h *CommandHandler) handleNextHand(ctx context.Context, data map[string]interface{}) models.Response {
	hand, created, err := h.games.NextHand(ctx, getString(data, "tournamentId"), h.now())
	if err != nil {
		return failure(err)
	}
	return models.Response{Success: true, Data: map[string]interface{}{
		"hand":    hand.PublicView(""),
		"created": created,
	}}
}

func (h *CommandHandler) handleGameAction(ctx context.Context, data map[string]interface{}) models.Response {
	action := models.PlayerAction(getString(data, "action"))
	if !action.Valid() {
		return models.Response{Success: false, Error: "invalid action"}
	}

	req := models.ActionRequest{
		TournamentID:  getString(data, "tournamentId"),
		ParticipantID: getString(data, "participantId"),
		Action:        action,
		Amount:        getInt(data, "amount"),
		RequestID:     getString(data, "requestId"),
	}
	hand, err := h.games.SubmitAction(ctx, req)
	if err != nil {
		return failure(err)
	}
	return models.Response{Success: true, Data: hand.PublicView(req.ParticipantID)}
}

func (h *CommandHandler) handleView(ctx context.Context, data map[string]interface{}) models.Response {
	hand, err := h.games.View(ctx, getString(data, "tournamentId"), getString(data, "participantId"))
	if err != nil {
		return failure(err)
	}
	return models.Response{Success: true, Data: hand}
}

func (h *CommandHandler) handleTick(ctx context.Context) models.Response {
	result, err := h.ticker.Run(ctx)
	if err != nil {
		return models.Response{Success: false, Error: err.Error(), Data: result}
	}
	return models.Response{Success: true, Data: result}
}

func (h *CommandHandler) handleScan(ctx context.Context) models.Response {
	report, err := h.recovery.Scan(ctx)
	if err != nil {
		return failure(err)
	}
	return models.Response{Success: true, Data: report}
}

func (h *CommandHandler) handleVoidHand(ctx context.Context, data map[string]interface{}) models.Response {
	hand, err := h.recovery.VoidFaultedHand(ctx, getString(data, "tournamentId"))
	if err != nil {
		return failure(err)
	}
	return models.Response{Success: true, Data: map[string]interface{}{
		"tournamentId": hand.TournamentID,
		"handNumber":   hand.HandNumber,
	}}
}

func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getInt(data map[string]interface{}, key string) int {
	if val, ok := data[key]; ok {
		switch v := val.(type) {
		case float64:
			return int(v)
		case int:
			return v
		case string:
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
	}
	return 0
}
