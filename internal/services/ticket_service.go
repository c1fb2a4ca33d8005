package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/timesheet-api/internal/clock"
	"github.com/yukikurage/timesheet-api/internal/constants"
	"github.com/yukikurage/timesheet-api/internal/models"
	"github.com/yukikurage/timesheet-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrTicketNameRequired = errors.New("ticket name is required")
)

// TicketService handles ticket business logic
type TicketService struct {
	ticketRepo repository.TicketRepository
	clock      clock.Clock
	log        *zap.Logger
}

// NewTicketService creates a new TicketService
func NewTicketService(ticketRepo repository.TicketRepository, clk clock.Clock, log *zap.Logger) *TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		clock:      clk,
		log:        log,
	}
}

// TicketInput represents the editable fields of a ticket
type TicketInput struct {
	Name     string
	Color    string
	IssueKey string
	ChatRoom string
}

func (in TicketInput) normalize() (repository.TicketFields, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return repository.TicketFields{}, ErrTicketNameRequired
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = constants.DefaultTicketColor
	}
	return repository.TicketFields{
		Name:     name,
		Color:    color,
		IssueKey: strings.TrimSpace(in.IssueKey),
		ChatRoom: strings.TrimSpace(in.ChatRoom),
	}, nil
}

// AddTicket creates a ticket with a fresh identifier. Names need not be unique.
func (s *TicketService) AddTicket(userID uint64, input TicketInput) (*models.Ticket, error) {
	fields, err := input.normalize()
	if err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     fields.Name,
		Color:    fields.Color,
		IssueKey: fields.IssueKey,
		ChatRoom: fields.ChatRoom,
	}

	if err := s.ticketRepo.Create(ticket); err != nil {
		s.log.Error("failed to create ticket", zap.Uint64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	return ticket, nil
}

// GetTicket returns one of the user's tickets
func (s *TicketService) GetTicket(userID uint64, ticketID string) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(userID, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	return ticket, nil
}

// UpdateTicket overwrites all mutable fields of a ticket. Entries logged
// under the old name keep that name.
func (s *TicketService) UpdateTicket(userID uint64, ticketID string, input TicketInput) (*models.Ticket, error) {
	fields, err := input.normalize()
	if err != nil {
		return nil, err
	}

	if err := s.ticketRepo.Update(userID, ticketID, fields); err != nil {
		return nil, s.mutationError("update", userID, ticketID, err)
	}

	return s.GetTicket(userID, ticketID)
}

// ArchiveTicket hides a ticket from the active list and stamps the archive time
func (s *TicketService) ArchiveTicket(userID uint64, ticketID string) error {
	now := s.clock.Now().UTC()
	if err := s.ticketRepo.SetArchived(userID, ticketID, &now); err != nil {
		return s.mutationError("archive", userID, ticketID, err)
	}
	return nil
}

// RestoreTicket brings an archived ticket back
func (s *TicketService) RestoreTicket(userID uint64, ticketID string) error {
	if err := s.ticketRepo.SetArchived(userID, ticketID, nil); err != nil {
		return s.mutationError("restore", userID, ticketID, err)
	}
	return nil
}

// DeleteTicket hard deletes a ticket without touching its time entries
func (s *TicketService) DeleteTicket(userID uint64, ticketID string) error {
	if err := s.ticketRepo.Delete(userID, ticketID); err != nil {
		return s.mutationError("delete", userID, ticketID, err)
	}
	return nil
}

// ListTickets returns the user's tickets in saved order, followed by the
// unordered rest sorted by name.
func (s *TicketService) ListTickets(userID uint64, includeArchived bool) ([]models.Ticket, error) {
	tickets, err := s.ticketRepo.List(userID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	order, err := s.ticketRepo.FindOrder(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket order: %w", err)
	}

	return applyTicketOrder(tickets, order), nil
}

// ListArchivedTickets returns the user's archived tickets sorted by name
func (s *TicketService) ListArchivedTickets(userID uint64) ([]models.Ticket, error) {
	tickets, err := s.ticketRepo.ListArchived(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived tickets: %w", err)
	}
	return tickets, nil
}

// SaveTicketOrder stores the given order after silently dropping ids the
// user does not own and repeated ids. It returns the order actually saved.
func (s *TicketService) SaveTicketOrder(userID uint64, ticketIDs []string) ([]string, error) {
	owned, err := s.ticketRepo.List(userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	valid := make(map[string]struct{}, len(owned))
	for _, t := range owned {
		valid[t.ID] = struct{}{}
	}

	filtered := make([]string, 0, len(ticketIDs))
	for _, id := range ticketIDs {
		if _, ok := valid[id]; !ok {
			continue
		}
		delete(valid, id)
		filtered = append(filtered, id)
	}

	if err := s.ticketRepo.SaveOrder(userID, filtered); err != nil {
		s.log.Error("failed to save ticket order", zap.Uint64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to save ticket order: %w", err)
	}

	return filtered, nil
}

// CleanupOldArchivedTickets deletes archived tickets that have no entry
// started within the retention window. Safe to call any number of times.
func (s *TicketService) CleanupOldArchivedTickets(userID uint64) (int64, error) {
	since := s.clock.Now().Add(-constants.ArchiveRetention)

	deleted, err := s.ticketRepo.DeleteArchivedWithoutEntriesSince(userID, since)
	if err != nil {
		s.log.Error("failed to clean up archived tickets", zap.Uint64("user_id", userID), zap.Error(err))
		return 0, fmt.Errorf("failed to clean up archived tickets: %w", err)
	}

	if deleted > 0 {
		s.log.Info("deleted stale archived tickets", zap.Uint64("user_id", userID), zap.Int64("count", deleted))
	}
	return deleted, nil
}

func (s *TicketService) mutationError(op string, userID uint64, ticketID string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTicketNotFound
	}
	s.log.Error("ticket mutation failed",
		zap.String("op", op),
		zap.Uint64("user_id", userID),
		zap.String("ticket_id", ticketID),
		zap.Error(err),
	)
	return fmt.Errorf("failed to %s ticket: %w", op, err)
}

// applyTicketOrder puts tickets listed in order first, in that order, and
// the rest after them by name.
func applyTicketOrder(tickets []models.Ticket, order []string) []models.Ticket {
	byID := make(map[string]models.Ticket, len(tickets))
	for _, t := range tickets {
		byID[t.ID] = t
	}

	ordered := make([]models.Ticket, 0, len(tickets))
	for _, id := range order {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
			delete(byID, id)
		}
	}

	rest := make([]models.Ticket, 0, len(byID))
	for _, t := range byID {
		rest = append(rest, t)
	}
	sort.SliceStable(rest, func(i, j int) bool {
		if rest[i].Name != rest[j].Name {
			return rest[i].Name < rest[j].Name
		}
		return rest[i].ID < rest[j].ID
	})

	return append(ordered, rest...)
}
