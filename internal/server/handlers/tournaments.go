package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"poker-platform/internal/middleware"
	"poker-platform/internal/store"
	"poker-platform/internal/tournament"
	domain "poker-platform/models"

	"github.com/gin-gonic/gin"
)

var knownStatuses = map[domain.TournamentStatus]bool{
	domain.StatusRegistering:      true,
	domain.StatusLateRegistration: true,
	domain.StatusRunning:          true,
	domain.StatusFinished:         true,
}

// HandleListTournaments lists tournaments, optionally filtered by a
// comma-separated status query.
func HandleListTournaments(c *gin.Context, st Store) {
	var statuses []domain.TournamentStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := domain.TournamentStatus(strings.TrimSpace(s))
			if !knownStatuses[status] {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + string(status)})
				return
			}
			statuses = append(statuses, status)
		}
	}

	tournaments, err := st.ListTournaments(c.Request.Context(), statuses...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tournaments": tournaments})
}

type tournamentDetail struct {
	Tournament   *domain.Tournament   `json:"tournament"`
	Participants []domain.Participant `json:"participants"`
	SmallBlind   int                  `json:"smallBlind"`
	BigBlind     int                  `json:"bigBlind"`
	// NextLevelIn is in seconds; zero on the last level and for cash tables.
	NextLevelIn int               `json:"nextLevelIn"`
	Hand        *domain.HandState `json:"hand,omitempty"`
	// YouAre is the caller's participant id when they are seated.
	YouAre string `json:"youAre,omitempty"`
}

// HandleGetTournament returns a tournament with its standings and the live
// hand as the caller may see it.
func HandleGetTournament(c *gin.Context, st Store, games Games, now func() time.Time) {
	ctx := c.Request.Context()
	id := c.Param("id")

	t, err := st.GetTournament(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	participants, err := st.ListParticipants(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	detail := tournamentDetail{
		Tournament:   t,
		Participants: tournament.Standings(participants),
	}
	at := now()
	if level, err := tournament.BlindsAt(t, at); err == nil {
		detail.SmallBlind = level.SmallBlind
		detail.BigBlind = level.BigBlind
	}
	detail.NextLevelIn = int(tournament.TimeUntilNextLevel(t, at).Seconds())
	detail.YouAre = callerParticipant(c, participants)

	hand, err := games.View(ctx, id, detail.YouAre)
	switch {
	case err == nil:
		detail.Hand = hand
	case !errors.Is(err, store.ErrHandNotFound):
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// HandleGetHistory returns recent concluded hands, newest first.
func HandleGetHistory(c *gin.Context, st Store) {
	ctx := c.Request.Context()
	id := c.Param("id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	if _, err := st.GetTournament(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	history, err := st.ListHistory(ctx, id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// HandleRegister seats the caller and debits the buy-in.
func HandleRegister(c *gin.Context, registrar Registrar, now func() time.Time) {
	userID := c.GetString(middleware.UserIDKey)

	p, err := registrar.Register(c.Request.Context(), c.Param("id"), userID, now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"participant": p})
}

// callerParticipant finds the authenticated caller's participant id, or "".
func callerParticipant(c *gin.Context, participants []domain.Participant) string {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return ""
	}
	for _, p := range participants {
		if p.Occupant == domain.Human(userID) {
			return p.ID
		}
	}
	return ""
}
