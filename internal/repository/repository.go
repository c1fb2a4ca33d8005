package repository

import (
	"time"

	"github.com/yukikurage/timesheet-api/internal/models"
	"github.com/yukikurage/timesheet-api/internal/utils"
)

// Every lookup and mutation below is scoped by the owning user; a record
// owned by someone else behaves exactly like a missing one and yields
// gorm.ErrRecordNotFound.

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by exact username
	FindByUsername(username string) (*models.User, error)

	// List returns every user ordered by username
	List() ([]models.User, error)

	// Count returns the number of users
	Count() (int64, error)

	// UpdatePasswordHash replaces a user's password hash
	UpdatePasswordHash(id uint64, hash string) error
}

// TicketFields holds the mutable fields of a ticket
type TicketFields struct {
	Name     string
	Color    string
	IssueKey string
	ChatRoom string
}

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	// Create creates a new ticket
	Create(ticket *models.Ticket) error

	// FindByID finds one of the user's tickets
	FindByID(userID uint64, id string) (*models.Ticket, error)

	// List returns the user's tickets, archived ones only when requested
	List(userID uint64, includeArchived bool) ([]models.Ticket, error)

	// ListArchived returns the user's archived tickets ordered by name
	ListArchived(userID uint64) ([]models.Ticket, error)

	// Update overwrites the mutable fields of a ticket
	Update(userID uint64, id string, fields TicketFields) error

	// SetArchived archives (archivedAt != nil) or restores (nil) a ticket
	SetArchived(userID uint64, id string, archivedAt *time.Time) error

	// Delete hard deletes a ticket
	Delete(userID uint64, id string) error

	// FindOrder returns the user's saved ticket order, empty if none
	FindOrder(userID uint64) ([]string, error)

	// SaveOrder replaces the user's saved ticket order
	SaveOrder(userID uint64, ticketIDs []string) error

	// DeleteArchivedWithoutEntriesSince deletes every archived ticket of the
	// user that has no time entry (matched by name) starting at or after since
	DeleteArchivedWithoutEntriesSince(userID uint64, since time.Time) (int64, error)
}

// TimeEntryRepository defines the interface for time entry data access.
// The current-entry pointer is maintained only through this repository so
// that every write touching it shares a transaction with the entry write.
type TimeEntryRepository interface {
	// FindByID finds one of the user's entries
	FindByID(userID uint64, id string) (*models.TimeEntry, error)

	// List returns the user's entries ordered by start time descending
	List(userID uint64, page *utils.PaginationParams) ([]models.TimeEntry, error)

	// ListClosedBetween returns closed entries whose start lies in [from, to]
	ListClosedBetween(userID uint64, from, to time.Time) ([]models.TimeEntry, error)

	// FindCurrent returns the user's current-entry pointer
	FindCurrent(userID uint64) (*models.CurrentEntry, error)

	// FindRunning returns the entry the pointer references, provided it is still open
	FindRunning(userID uint64) (*models.TimeEntry, error)

	// Start closes any running entry at now, inserts entry and points at it
	Start(entry *models.TimeEntry, now time.Time) error

	// Stop closes the running entry at now and clears the pointer. It
	// returns nil without error when nothing is running.
	Stop(userID uint64, now time.Time) (*models.TimeEntry, error)

	// Update overwrites start, end and memo and keeps the pointer consistent
	Update(userID uint64, id string, start time.Time, end *time.Time, memo string, now time.Time) error

	// Delete removes an entry and clears the pointer if it referenced it
	Delete(userID uint64, id string) error
}
