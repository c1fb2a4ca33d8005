package dto

import (
	"time"

	"github.com/yukikurage/timesheet-api/internal/models"
	"github.com/yukikurage/timesheet-api/internal/utils"
)

// TimeEntryDTO represents a time entry in API responses. Hours is only
// set for closed entries.
type TimeEntryDTO struct {
	ID         string     `json:"id"`
	TicketName string     `json:"ticket_name"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	Memo       string     `json:"memo"`
	Running    bool       `json:"running"`
	Hours      *float64   `json:"hours,omitempty"`
	Formatted  string     `json:"formatted,omitempty"`
}

// TimeEntryListResponse represents a (possibly paginated) list of entries
type TimeEntryListResponse struct {
	Entries    []TimeEntryDTO            `json:"entries"`
	Pagination *utils.PaginationResponse `json:"pagination,omitempty"`
}

// UpdateTimeEntryRequest is the body of a manual entry edit. A null or
// missing end_time leaves the entry open.
type UpdateTimeEntryRequest struct {
	StartTime time.Time  `json:"start_time" binding:"required"`
	EndTime   *time.Time `json:"end_time"`
	Memo      string     `json:"memo"`
}

// TimerStatusResponse is polled by clients to render the running timer
type TimerStatusResponse struct {
	EntryID  string        `json:"entry_id"`
	Duration float64       `json:"duration"`
	Entry    *TimeEntryDTO `json:"entry"`
}

// ToTimeEntryDTO converts a time entry model to its API representation
func ToTimeEntryDTO(entry models.TimeEntry, loc *time.Location) TimeEntryDTO {
	out := TimeEntryDTO{
		ID:         entry.ID,
		TicketName: entry.TicketName,
		StartTime:  entry.StartTime.In(loc),
		Memo:       entry.Memo,
		Running:    entry.Running(),
	}
	if entry.EndTime != nil {
		end := entry.EndTime.In(loc)
		out.EndTime = &end
		hours := entry.Duration().Hours()
		out.Hours = &hours
		out.Formatted = utils.FormatHours(hours)
	}
	return out
}

// ToTimeEntryDTOs converts a slice of entries, never returning nil
func ToTimeEntryDTOs(entries []models.TimeEntry, loc *time.Location) []TimeEntryDTO {
	out := make([]TimeEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToTimeEntryDTO(e, loc))
	}
	return out
}
