package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/timesheet-api/internal/clock"
	"github.com/yukikurage/timesheet-api/internal/models"
	"github.com/yukikurage/timesheet-api/internal/repository"
	"github.com/yukikurage/timesheet-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrEntryNotFound = errors.New("time entry not found")

// EntryService handles listing and manual editing of time entries. It
// shares the lock table with TimerService.
type EntryService struct {
	entryRepo repository.TimeEntryRepository
	locks     *UserLocks
	clock     clock.Clock
	log       *zap.Logger
}

// NewEntryService creates a new EntryService
func NewEntryService(entryRepo repository.TimeEntryRepository, locks *UserLocks, clk clock.Clock, log *zap.Logger) *EntryService {
	return &EntryService{
		entryRepo: entryRepo,
		locks:     locks,
		clock:     clk,
		log:       log,
	}
}

// ListEntries returns the user's entries, newest start first
func (s *EntryService) ListEntries(userID uint64, page *utils.PaginationParams) ([]models.TimeEntry, error) {
	entries, err := s.entryRepo.List(userID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// GetEntry returns one of the user's entries
func (s *EntryService) GetEntry(userID uint64, entryID string) (*models.TimeEntry, error) {
	entry, err := s.entryRepo.FindByID(userID, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to find entry: %w", err)
	}
	return entry, nil
}

// UpdateEntryInput represents a manual edit of a time entry
type UpdateEntryInput struct {
	StartTime time.Time
	EndTime   *time.Time
	Memo      string
}

// UpdateEntry overwrites start, end and memo without temporal validation.
// Ending the running entry stops the timer; clearing the end of a closed
// entry makes it the running one.
func (s *EntryService) UpdateEntry(userID uint64, entryID string, input UpdateEntryInput) (*models.TimeEntry, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if err := s.entryRepo.Update(userID, entryID, input.StartTime, input.EndTime, input.Memo, s.clock.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		s.log.Error("failed to update entry", zap.Uint64("user_id", userID), zap.String("entry_id", entryID), zap.Error(err))
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}

	return s.GetEntry(userID, entryID)
}

// DeleteEntry removes an entry, stopping the timer if it was running
func (s *EntryService) DeleteEntry(userID uint64, entryID string) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if err := s.entryRepo.Delete(userID, entryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		s.log.Error("failed to delete entry", zap.Uint64("user_id", userID), zap.String("entry_id", entryID), zap.Error(err))
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}
