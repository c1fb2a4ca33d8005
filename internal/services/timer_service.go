package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/timesheet-api/internal/clock"
	"github.com/yukikurage/timesheet-api/internal/models"
	"github.com/yukikurage/timesheet-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TimerService runs the per-user Idle/Running state machine. A user is
// Running exactly when a current-entry pointer exists; the pointed-to
// entry is the only one of theirs without an end time.
type TimerService struct {
	entryRepo repository.TimeEntryRepository
	locks     *UserLocks
	clock     clock.Clock
	log       *zap.Logger
}

// NewTimerService creates a new TimerService
func NewTimerService(entryRepo repository.TimeEntryRepository, locks *UserLocks, clk clock.Clock, log *zap.Logger) *TimerService {
	return &TimerService{
		entryRepo: entryRepo,
		locks:     locks,
		clock:     clk,
		log:       log,
	}
}

// StartTimer stops whatever is running and starts a new entry for
// ticketName as one atomic step. The name is stored verbatim and need not
// match an existing ticket.
func (s *TimerService) StartTimer(userID uint64, ticketName string) (*models.TimeEntry, error) {
	if strings.TrimSpace(ticketName) == "" {
		return nil, ErrTicketNameRequired
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.clock.Now()
	entry := &models.TimeEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		TicketName: ticketName,
		StartTime:  now,
	}

	if err := s.entryRepo.Start(entry, now); err != nil {
		s.log.Error("failed to start timer", zap.Uint64("user_id", userID), zap.String("ticket_name", ticketName), zap.Error(err))
		return nil, fmt.Errorf("failed to start timer: %w", err)
	}

	s.log.Debug("timer started", zap.Uint64("user_id", userID), zap.String("entry_id", entry.ID))
	return entry, nil
}

// StopTimer closes the running entry. It returns nil, nil when idle.
func (s *TimerService) StopTimer(userID uint64) (*models.TimeEntry, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	entry, err := s.entryRepo.Stop(userID, s.clock.Now())
	if err != nil {
		s.log.Error("failed to stop timer", zap.Uint64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to stop timer: %w", err)
	}

	if entry != nil {
		s.log.Debug("timer stopped", zap.Uint64("user_id", userID), zap.String("entry_id", entry.ID))
	}
	return entry, nil
}

// CurrentEntryID returns the id of the running entry, or "" when idle.
func (s *TimerService) CurrentEntryID(userID uint64) (string, error) {
	current, err := s.entryRepo.FindCurrent(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load current entry: %w", err)
	}
	return current.EntryID, nil
}

// CurrentEntry returns the running entry, or nil when idle.
func (s *TimerService) CurrentEntry(userID uint64) (*models.TimeEntry, error) {
	entry, err := s.entryRepo.FindRunning(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load running entry: %w", err)
	}
	return entry, nil
}

// CurrentDuration returns the seconds elapsed on the running entry, or 0 when idle.
func (s *TimerService) CurrentDuration(userID uint64) (float64, error) {
	_, elapsed, err := s.CurrentStatus(userID)
	return elapsed, err
}

// CurrentStatus returns the running entry together with its elapsed
// seconds, both taken from a single read. The entry is nil when idle.
func (s *TimerService) CurrentStatus(userID uint64) (*models.TimeEntry, float64, error) {
	entry, err := s.CurrentEntry(userID)
	if err != nil || entry == nil {
		return nil, 0, err
	}
	return entry, elapsedSeconds(entry, s.clock.Now()), nil
}

func elapsedSeconds(entry *models.TimeEntry, now time.Time) float64 {
	elapsed := now.Sub(entry.StartTime).Seconds()
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
