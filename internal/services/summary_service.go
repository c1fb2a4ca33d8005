package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yukikurage/timesheet-api/internal/clock"
	"github.com/yukikurage/timesheet-api/internal/constants"
	"github.com/yukikurage/timesheet-api/internal/models"
	"github.com/yukikurage/timesheet-api/internal/repository"
)

var ErrInvalidDate = errors.New("dates must use the YYYY-MM-DD format")

// Period keywords accepted by ResolvePeriod
const (
	PeriodToday     = "today"
	PeriodYesterday = "yesterday"
	PeriodThisWeek  = "this_week"
	PeriodLastWeek  = "last_week"
	PeriodThisMonth = "this_month"
	PeriodLastMonth = "last_month"
	PeriodCustom    = "custom"
)

// DateRange is an inclusive range of calendar dates in YYYY-MM-DD form.
type DateRange struct {
	Period    string
	StartDate string
	EndDate   string
}

// TicketTotal is the rounded number of hours booked on one ticket name.
type TicketTotal struct {
	TicketName string
	Hours      float64
}

// DailyTotal is the rounded number of hours of entries started on Date.
type DailyTotal struct {
	Date    string
	Hours   float64
	Entries []models.TimeEntry
}

// Summary aggregates a user's closed entries over a date range.
type Summary struct {
	StartDate  string
	EndDate    string
	Tickets    []TicketTotal
	TotalHours float64
	Daily      []DailyTotal

	loc *time.Location
}

// Location returns the zone the summary's calendar dates refer to.
func (s *Summary) Location() *time.Location {
	if s.loc == nil {
		return time.UTC
	}
	return s.loc
}

// TicketHours returns the per-ticket totals keyed by ticket name.
func (s *Summary) TicketHours() map[string]float64 {
	hours := make(map[string]float64, len(s.Tickets))
	for _, t := range s.Tickets {
		hours[t.TicketName] = t.Hours
	}
	return hours
}

// SummaryService computes time summaries
type SummaryService struct {
	entryRepo repository.TimeEntryRepository
	clock     clock.Clock
	loc       *time.Location
}

// NewSummaryService creates a new SummaryService. Calendar dates are
// interpreted in loc.
func NewSummaryService(entryRepo repository.TimeEntryRepository, clk clock.Clock, loc *time.Location) *SummaryService {
	if loc == nil {
		loc = time.Local
	}
	return &SummaryService{
		entryRepo: entryRepo,
		clock:     clk,
		loc:       loc,
	}
}

// Location returns the zone calendar dates are interpreted in.
func (s *SummaryService) Location() *time.Location {
	return s.loc
}

// Today returns the current calendar date.
func (s *SummaryService) Today() string {
	return s.clock.Now().In(s.loc).Format(constants.DateLayout)
}

// ResolvePeriod resolves a period keyword relative to the current instant.
func (s *SummaryService) ResolvePeriod(period, customStart, customEnd string) (DateRange, error) {
	return ResolvePeriod(period, s.clock.Now().In(s.loc), customStart, customEnd)
}

// ResolvePeriod maps a period keyword to a date range relative to ref.
// Weeks start on Monday. Any keyword not listed above, including the
// empty one, means custom; custom dates default to ref's date.
func ResolvePeriod(period string, ref time.Time, customStart, customEnd string) (DateRange, error) {
	today := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	sinceMonday := (int(today.Weekday()) + 6) % 7

	var start, end time.Time
	switch period {
	case PeriodToday:
		start, end = today, today
	case PeriodYesterday:
		start = today.AddDate(0, 0, -1)
		end = start
	case PeriodThisWeek:
		start, end = today.AddDate(0, 0, -sinceMonday), today
	case PeriodLastWeek:
		start = today.AddDate(0, 0, -sinceMonday-7)
		end = start.AddDate(0, 0, 6)
	case PeriodThisMonth:
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		end = today
	case PeriodLastMonth:
		firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		end = firstOfMonth.AddDate(0, 0, -1)
		start = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	default:
		rng := DateRange{Period: PeriodCustom, StartDate: customStart, EndDate: customEnd}
		if rng.StartDate == "" {
			rng.StartDate = today.Format(constants.DateLayout)
		}
		if rng.EndDate == "" {
			rng.EndDate = today.Format(constants.DateLayout)
		}
		for _, d := range []string{rng.StartDate, rng.EndDate} {
			if _, err := time.Parse(constants.DateLayout, d); err != nil {
				return DateRange{}, ErrInvalidDate
			}
		}
		return rng, nil
	}

	return DateRange{
		Period:    period,
		StartDate: start.Format(constants.DateLayout),
		EndDate:   end.Format(constants.DateLayout),
	}, nil
}

// Summarize totals the user's closed entries whose start lies between
// startDate 00:00:00 and endDate 23:59:59 inclusive. Ticket hours are
// rounded to two decimals and the grand total is the rounded sum of
// those rounded values. Daily totals are rounded once per day.
func (s *SummaryService) Summarize(userID uint64, startDate, endDate string) (*Summary, error) {
	startDay, err := time.ParseInLocation(constants.DateLayout, startDate, s.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	endDay, err := time.ParseInLocation(constants.DateLayout, endDate, s.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}

	from := startDay
	to := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), 23, 59, 59, 0, s.loc)

	entries, err := s.entryRepo.ListClosedBetween(userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	summary := &Summary{
		StartDate: startDate,
		EndDate:   endDate,
		loc:       s.loc,
	}
	summary.Tickets, summary.TotalHours = totalsByTicket(entries)
	summary.Daily = totalsByDay(entries, s.loc)
	return summary, nil
}

func totalsByTicket(entries []models.TimeEntry) ([]TicketTotal, float64) {
	seconds := make(map[string]float64)
	for _, e := range entries {
		seconds[e.TicketName] += e.Duration().Seconds()
	}

	totals := make([]TicketTotal, 0, len(seconds))
	var sum float64
	for name, secs := range seconds {
		hours := roundHours(secs / 3600)
		totals = append(totals, TicketTotal{TicketName: name, Hours: hours})
		sum += hours
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Hours != totals[j].Hours {
			return totals[i].Hours > totals[j].Hours
		}
		return totals[i].TicketName < totals[j].TicketName
	})

	return totals, roundHours(sum)
}

// totalsByDay groups entries by the calendar date of their start time,
// newest day first. Entries keep their incoming order within a day.
func totalsByDay(entries []models.TimeEntry, loc *time.Location) []DailyTotal {
	index := make(map[string]int)
	var days []DailyTotal
	seconds := make(map[string]float64)

	for _, e := range entries {
		date := e.StartTime.In(loc).Format(constants.DateLayout)
		i, ok := index[date]
		if !ok {
			i = len(days)
			index[date] = i
			days = append(days, DailyTotal{Date: date})
		}
		days[i].Entries = append(days[i].Entries, e)
		seconds[date] += e.Duration().Seconds()
	}

	for i := range days {
		days[i].Hours = roundHours(seconds[days[i].Date] / 3600)
	}

	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date > days[j].Date
	})
	return days
}

func roundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}
