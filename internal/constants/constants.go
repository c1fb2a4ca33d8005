package constants

import "time"

const (
	// ContextKeyUserID is used both as the session key and the gin context key.
	ContextKeyUserID = "user_id"

	// ContextKeyTicket holds the ticket loaded by RequireTicketAccess.
	ContextKeyTicket = "ticket"

	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "timesheet_session"

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6

	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72

	// DefaultTicketColor is applied when a ticket is saved without a color.
	DefaultTicketColor = "#656d76"

	// ArchiveRetention is how long an archived ticket survives without new entries.
	ArchiveRetention = 30 * 24 * time.Hour

	// DateLayout is the calendar date format used by summaries and periods.
	DateLayout = "2006-01-02"

	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 500
)
