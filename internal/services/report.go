package services

import (
	"fmt"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"github.com/yukikurage/timesheet-api/internal/utils"
	"go.uber.org/zap"
)

var tableBackground = &color.Color{Red: 240, Green: 240, Blue: 240}

// ReportService renders summaries as PDF documents
type ReportService struct {
	log *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(log *zap.Logger) *ReportService {
	return &ReportService{log: log}
}

// RenderSummaryPDF lays out ticket totals followed by one table per day.
func (s *ReportService) RenderSummaryPDF(summary *Summary) ([]byte, error) {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("Timesheet Summary", props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(fmt.Sprintf("%s - %s", summary.StartDate, summary.EndDate), props.Text{
					Top:   3,
					Align: consts.Center,
					Size:  12,
				})
			})
		})
	})

	sectionTitle(m, "Hours by ticket")
	if len(summary.Tickets) > 0 {
		rows := make([][]string, 0, len(summary.Tickets))
		for _, t := range summary.Tickets {
			rows = append(rows, []string{t.TicketName, fmt.Sprintf("%.2f", t.Hours), utils.FormatHours(t.Hours)})
		}
		m.TableList([]string{"Ticket", "Hours", "HH:MM"}, rows, tableProps([]uint{6, 3, 3}))
	}

	for _, day := range summary.Daily {
		sectionTitle(m, fmt.Sprintf("%s (%s)", day.Date, utils.FormatHours(day.Hours)))

		rows := make([][]string, 0, len(day.Entries))
		for _, e := range day.Entries {
			end := ""
			if e.EndTime != nil {
				end = e.EndTime.In(summary.Location()).Format("15:04")
			}
			rows = append(rows, []string{
				e.StartTime.In(summary.Location()).Format("15:04"),
				end,
				e.TicketName,
				e.Memo,
			})
		}
		m.TableList([]string{"Start", "End", "Ticket", "Memo"}, rows, tableProps([]uint{2, 2, 4, 4}))
	}

	m.Row(20, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("Total: %.2f h (%s)", summary.TotalHours, utils.FormatHours(summary.TotalHours)), props.Text{
				Top:   10,
				Style: consts.Bold,
				Align: consts.Right,
				Size:  12,
			})
		})
	})

	buf, err := m.Output()
	if err != nil {
		s.log.Error("failed to render summary pdf", zap.Error(err))
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func sectionTitle(m pdf.Maroto, title string) {
	m.Row(10, func() {
		m.Col(12, func() {
			m.Text(title, props.Text{
				Top:   5,
				Style: consts.Bold,
				Size:  12,
			})
		})
	})
}

func tableProps(grid []uint) props.TableList {
	return props.TableList{
		HeaderProp: props.TableListContent{
			Size:      10,
			GridSizes: grid,
		},
		ContentProp: props.TableListContent{
			Size:      10,
			GridSizes: grid,
		},
		Align:                consts.Left,
		AlternatedBackground: tableBackground,
		HeaderContentSpace:   1,
	}
}
