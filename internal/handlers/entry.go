package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timesheet-api/internal/dto"
	apierrors "github.com/yukikurage/timesheet-api/internal/errors"
	"github.com/yukikurage/timesheet-api/internal/services"
	"github.com/yukikurage/timesheet-api/internal/utils"
)

type EntryHandler struct {
	entryService *services.EntryService
	loc          *time.Location
}

func NewEntryHandler(entryService *services.EntryService, loc *time.Location) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
		loc:          loc,
	}
}

// ListEntries returns the user's entries, newest first.
// page and limit are optional; without them every entry is returned.
func (h *EntryHandler) ListEntries(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	entries, err := h.entryService.ListEntries(userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.TimeEntryListResponse{Entries: dto.ToTimeEntryDTOs(entries, h.loc)}
	if params != nil {
		resp.Pagination = &utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateEntry overwrites start, end and memo of an entry
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	entry, err := h.entryService.UpdateEntry(userID, c.Param("id"), services.UpdateEntryInput{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Memo:      req.Memo,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryDTO(*entry, h.loc))
}

// DeleteEntry deletes an entry
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.entryService.DeleteEntry(userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted successfully"})
}
