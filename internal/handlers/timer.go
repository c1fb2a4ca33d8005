package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timesheet-api/internal/dto"
	apierrors "github.com/yukikurage/timesheet-api/internal/errors"
	"github.com/yukikurage/timesheet-api/internal/services"
)

type TimerHandler struct {
	timerService *services.TimerService
	loc          *time.Location
}

func NewTimerHandler(timerService *services.TimerService, loc *time.Location) *TimerHandler {
	return &TimerHandler{
		timerService: timerService,
		loc:          loc,
	}
}

// StartTimer stops any running entry and starts a new one
func (h *TimerHandler) StartTimer(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	type StartTimerRequest struct {
		TicketName string `json:"ticket_name"`
	}

	var req StartTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	entry, err := h.timerService.StartTimer(userID, req.TicketName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimeEntryDTO(*entry, h.loc))
}

// StopTimer closes the running entry. Stopping while idle succeeds with a
// null entry.
func (h *TimerHandler) StopTimer(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	entry, err := h.timerService.StopTimer(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"entry": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": dto.ToTimeEntryDTO(*entry, h.loc)})
}

// GetCurrent reports the running entry and its elapsed seconds
func (h *TimerHandler) GetCurrent(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	entry, duration, err := h.timerService.CurrentStatus(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.TimerStatusResponse{Duration: duration}
	if entry != nil {
		entryDTO := dto.ToTimeEntryDTO(*entry, h.loc)
		resp.EntryID = entry.ID
		resp.Entry = &entryDTO
	}
	c.JSON(http.StatusOK, resp)
}
