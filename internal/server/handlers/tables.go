package handlers

import (
	"net/http"
	"time"

	"poker-platform/internal/middleware"
	domain "poker-platform/models"

	"github.com/gin-gonic/gin"
)

type actionBody struct {
	ParticipantID string              `json:"participant_id" binding:"required"`
	Action        domain.PlayerAction `json:"action" binding:"required"`
	Amount        int                 `json:"amount"`
	RequestID     string              `json:"request_id"`
}

// HandleAction submits a fold, check, call, raise or all-in for the caller.
func HandleAction(c *gin.Context, games Games) {
	var body actionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req := domain.ActionRequest{
		TournamentID:  c.Param("id"),
		ParticipantID: body.ParticipantID,
		Action:        body.Action,
		Amount:        body.Amount,
		RequestID:     body.RequestID,
		UserID:        c.GetString(middleware.UserIDKey),
	}
	if req.RequestID == "" {
		req.RequestID = c.GetHeader("Idempotency-Key")
	}

	hand, err := games.SubmitAction(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hand": hand.PublicView(req.ParticipantID)})
}

// HandleNextHand deals the next hand when none is live and returns the
// live hand either way.
func HandleNextHand(c *gin.Context, st Store, games Games, now func() time.Time) {
	ctx := c.Request.Context()
	id := c.Param("id")

	hand, created, err := games.NextHand(ctx, id, now())
	if err != nil {
		respondError(c, err)
		return
	}

	viewer := ""
	if participants, err := st.ListParticipants(ctx, id); err == nil {
		viewer = callerParticipant(c, participants)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"hand": hand.PublicView(viewer), "created": created})
}

// HandleTick runs one tick. A tick that found the lock held reports
// ran=false with 200; overlapping triggers are expected.
func HandleTick(c *gin.Context, ticker Ticker) {
	result, err := ticker.Run(c.Request.Context())
	if err != nil && !result.Ran {
		respondError(c, err)
		return
	}
	body := gin.H{"result": result}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}
