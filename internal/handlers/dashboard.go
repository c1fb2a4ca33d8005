package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timesheet-api/internal/dto"
	"github.com/yukikurage/timesheet-api/internal/services"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	ticketService  *services.TicketService
	timerService   *services.TimerService
	entryService   *services.EntryService
	summaryService *services.SummaryService
	log            *zap.Logger
}

func NewDashboardHandler(
	ticketService *services.TicketService,
	timerService *services.TimerService,
	entryService *services.EntryService,
	summaryService *services.SummaryService,
	log *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		ticketService:  ticketService,
		timerService:   timerService,
		entryService:   entryService,
		summaryService: summaryService,
		log:            log,
	}
}

// GetDashboard prunes stale archived tickets and returns the main screen
// read model.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	// a failed cleanup must not hide the dashboard
	if _, err := h.ticketService.CleanupOldArchivedTickets(userID); err != nil {
		h.log.Warn("archived ticket cleanup failed", zap.Uint64("user_id", userID), zap.Error(err))
	}

	tickets, err := h.ticketService.ListTickets(userID, false)
	if err != nil {
		respondError(c, err)
		return
	}

	archived, err := h.ticketService.ListArchivedTickets(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.entryService.ListEntries(userID, nil)
	if err != nil {
		respondError(c, err)
		return
	}

	currentID, err := h.timerService.CurrentEntryID(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	loc := h.summaryService.Location()
	c.JSON(http.StatusOK, dto.DashboardDTO{
		Today:           h.summaryService.Today(),
		CurrentEntryID:  currentID,
		Tickets:         dto.ToTicketDTOs(tickets),
		ArchivedTickets: dto.ToTicketDTOs(archived),
		EntriesByDate:   dto.GroupEntriesByDate(dto.ToTimeEntryDTOs(entries, loc), loc),
	})
}
