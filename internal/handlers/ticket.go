package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timesheet-api/internal/dto"
	apierrors "github.com/yukikurage/timesheet-api/internal/errors"
	"github.com/yukikurage/timesheet-api/internal/middleware"
	"github.com/yukikurage/timesheet-api/internal/services"
)

type TicketHandler struct {
	ticketService *services.TicketService
}

func NewTicketHandler(ticketService *services.TicketService) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
	}
}

type ticketRequest struct {
	Name     string `json:"name" binding:"required"`
	Color    string `json:"color"`
	IssueKey string `json:"issue_key"`
	ChatRoom string `json:"chat_room"`
}

func (r ticketRequest) input() services.TicketInput {
	return services.TicketInput{
		Name:     r.Name,
		Color:    r.Color,
		IssueKey: r.IssueKey,
		ChatRoom: r.ChatRoom,
	}
}

// ListTickets returns the user's tickets in display order.
// Pass include_archived=true to include archived ones.
func (h *TicketHandler) ListTickets(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	includeArchived, _ := strconv.ParseBool(c.Query("include_archived"))

	tickets, err := h.ticketService.ListTickets(userID, includeArchived)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TicketListResponse{Tickets: dto.ToTicketDTOs(tickets)})
}

// ListArchivedTickets returns only archived tickets, by name
func (h *TicketHandler) ListArchivedTickets(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	tickets, err := h.ticketService.ListArchivedTickets(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TicketListResponse{Tickets: dto.ToTicketDTOs(tickets)})
}

// CreateTicket creates a new ticket
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ticketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ticket, err := h.ticketService.AddTicket(userID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTicketDTO(*ticket))
}

// GetTicket returns a specific ticket.
// The ticket is already loaded by RequireTicketAccess.
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, ok := middleware.GetTicket(c)
	if !ok {
		apierrors.InternalError(c, "Ticket not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTicketDTO(ticket))
}

// UpdateTicket replaces name, color, issue key and chat room
func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ticketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ticket, err := h.ticketService.UpdateTicket(userID, c.Param("id"), req.input())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTicketDTO(*ticket))
}

// DeleteTicket deletes a ticket. Its time entries are kept.
func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.ticketService.DeleteTicket(userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ticket deleted successfully"})
}

// ArchiveTicket archives a ticket
func (h *TicketHandler) ArchiveTicket(c *gin.Context) {
	h.setArchived(c, true)
}

// RestoreTicket restores an archived ticket
func (h *TicketHandler) RestoreTicket(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *TicketHandler) setArchived(c *gin.Context, archived bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ticketID := c.Param("id")
	var err error
	if archived {
		err = h.ticketService.ArchiveTicket(userID, ticketID)
	} else {
		err = h.ticketService.RestoreTicket(userID, ticketID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	ticket, err := h.ticketService.GetTicket(userID, ticketID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTicketDTO(*ticket))
}

// SaveTicketOrder stores the display order of tickets
func (h *TicketHandler) SaveTicketOrder(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.TicketOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	saved, err := h.ticketService.SaveTicketOrder(userID, req.TicketIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TicketOrderResponse{TicketIDs: saved})
}

// CleanupArchivedTickets deletes archived tickets without recent entries
func (h *TicketHandler) CleanupArchivedTickets(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	deleted, err := h.ticketService.CleanupOldArchivedTickets(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
