package dto

import (
	"time"

	"github.com/yukikurage/timesheet-api/internal/models"
)

// TicketDTO represents a ticket in API responses
type TicketDTO struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Color      string     `json:"color"`
	IssueKey   string     `json:"issue_key"`
	ChatRoom   string     `json:"chat_room"`
	Archived   bool       `json:"archived"`
	ArchivedAt *time.Time `json:"archived_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TicketListResponse wraps a list of tickets
type TicketListResponse struct {
	Tickets []TicketDTO `json:"tickets"`
}

// TicketOrderRequest carries the desired display order of ticket ids
type TicketOrderRequest struct {
	TicketIDs []string `json:"ticket_ids"`
}

// TicketOrderResponse echoes the order that was stored
type TicketOrderResponse struct {
	TicketIDs []string `json:"ticket_ids"`
}

// ToTicketDTO converts a ticket model to its API representation
func ToTicketDTO(ticket models.Ticket) TicketDTO {
	return TicketDTO{
		ID:         ticket.ID,
		Name:       ticket.Name,
		Color:      ticket.Color,
		IssueKey:   ticket.IssueKey,
		ChatRoom:   ticket.ChatRoom,
		Archived:   ticket.Archived,
		ArchivedAt: ticket.ArchivedAt,
		CreatedAt:  ticket.CreatedAt,
	}
}

// ToTicketDTOs converts a slice of tickets, never returning nil
func ToTicketDTOs(tickets []models.Ticket) []TicketDTO {
	out := make([]TicketDTO, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, ToTicketDTO(t))
	}
	return out
}
