package dto

import (
	"github.com/yukikurage/timesheet-api/internal/services"
	"github.com/yukikurage/timesheet-api/internal/utils"
)

// TicketTotalDTO is the time booked on one ticket name
type TicketTotalDTO struct {
	TicketName string  `json:"ticket_name"`
	Hours      float64 `json:"hours"`
	Formatted  string  `json:"formatted"`
}

// DailyTotalDTO is the time booked on one calendar date
type DailyTotalDTO struct {
	Date      string         `json:"date"`
	Hours     float64        `json:"hours"`
	Formatted string         `json:"formatted"`
	Entries   []TimeEntryDTO `json:"entries"`
}

// SummaryDTO represents an aggregated period in API responses
type SummaryDTO struct {
	Period         string           `json:"period"`
	StartDate      string           `json:"start_date"`
	EndDate        string           `json:"end_date"`
	Tickets        []TicketTotalDTO `json:"tickets"`
	TotalHours     float64          `json:"total_hours"`
	TotalFormatted string           `json:"total_formatted"`
	Daily          []DailyTotalDTO  `json:"daily"`
}

// NarrativeResponse carries an AI written recap of a period
type NarrativeResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Narrative string `json:"narrative"`
}

// ToSummaryDTO converts a computed summary to its API representation
func ToSummaryDTO(period string, summary *services.Summary) SummaryDTO {
	loc := summary.Location()

	tickets := make([]TicketTotalDTO, 0, len(summary.Tickets))
	for _, t := range summary.Tickets {
		tickets = append(tickets, TicketTotalDTO{
			TicketName: t.TicketName,
			Hours:      t.Hours,
			Formatted:  utils.FormatHours(t.Hours),
		})
	}

	daily := make([]DailyTotalDTO, 0, len(summary.Daily))
	for _, d := range summary.Daily {
		daily = append(daily, DailyTotalDTO{
			Date:      d.Date,
			Hours:     d.Hours,
			Formatted: utils.FormatHours(d.Hours),
			Entries:   ToTimeEntryDTOs(d.Entries, loc),
		})
	}

	return SummaryDTO{
		Period:         period,
		StartDate:      summary.StartDate,
		EndDate:        summary.EndDate,
		Tickets:        tickets,
		TotalHours:     summary.TotalHours,
		TotalFormatted: utils.FormatHours(summary.TotalHours),
		Daily:          daily,
	}
}
