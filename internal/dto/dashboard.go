package dto

import (
	"time"

	"github.com/yukikurage/timesheet-api/internal/constants"
)

// EntryDayDTO groups entries that started on the same calendar date
type EntryDayDTO struct {
	Date    string         `json:"date"`
	Entries []TimeEntryDTO `json:"entries"`
}

// DashboardDTO is everything the main screen needs in one response
type DashboardDTO struct {
	Today           string        `json:"today"`
	CurrentEntryID  string        `json:"current_entry_id"`
	Tickets         []TicketDTO   `json:"tickets"`
	ArchivedTickets []TicketDTO   `json:"archived_tickets"`
	EntriesByDate   []EntryDayDTO `json:"entries_by_date"`
}

// GroupEntriesByDate buckets already sorted entries by the date of their
// start time in loc, keeping the incoming order.
func GroupEntriesByDate(entries []TimeEntryDTO, loc *time.Location) []EntryDayDTO {
	days := make([]EntryDayDTO, 0)
	for _, e := range entries {
		date := e.StartTime.In(loc).Format(constants.DateLayout)
		if n := len(days); n > 0 && days[n-1].Date == date {
			days[n-1].Entries = append(days[n-1].Entries, e)
			continue
		}
		days = append(days, EntryDayDTO{Date: date, Entries: []TimeEntryDTO{e}})
	}
	return days
}
