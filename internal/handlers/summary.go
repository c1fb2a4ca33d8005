package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timesheet-api/internal/dto"
	"github.com/yukikurage/timesheet-api/internal/services"
)

type SummaryHandler struct {
	summaryService *services.SummaryService
	reportService  *services.ReportService
	aiService      *services.AIService
}

func NewSummaryHandler(summaryService *services.SummaryService, reportService *services.ReportService, aiService *services.AIService) *SummaryHandler {
	return &SummaryHandler{
		summaryService: summaryService,
		reportService:  reportService,
		aiService:      aiService,
	}
}

// summarize resolves ?period=&start_date=&end_date= and aggregates it.
func (h *SummaryHandler) summarize(c *gin.Context) (services.DateRange, *services.Summary, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return services.DateRange{}, nil, false
	}

	rng, err := h.summaryService.ResolvePeriod(c.Query("period"), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		respondError(c, err)
		return services.DateRange{}, nil, false
	}

	summary, err := h.summaryService.Summarize(userID, rng.StartDate, rng.EndDate)
	if err != nil {
		respondError(c, err)
		return services.DateRange{}, nil, false
	}

	return rng, summary, true
}

// GetSummary returns per-ticket and per-day totals for a period
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	rng, summary, ok := h.summarize(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ToSummaryDTO(rng.Period, summary))
}

// GetSummaryPDF renders the same summary as a PDF download
func (h *SummaryHandler) GetSummaryPDF(c *gin.Context) {
	_, summary, ok := h.summarize(c)
	if !ok {
		return
	}

	data, err := h.reportService.RenderSummaryPDF(summary)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("timesheet_%s_%s.pdf", summary.StartDate, summary.EndDate)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// GetNarrative returns an AI-written recap of the period
func (h *SummaryHandler) GetNarrative(c *gin.Context) {
	if !h.aiService.Enabled() {
		respondError(c, services.ErrAIServiceNotConfigured)
		return
	}

	_, summary, ok := h.summarize(c)
	if !ok {
		return
	}

	text, err := h.aiService.NarrateSummary(c.Request.Context(), summary)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NarrativeResponse{
		StartDate: summary.StartDate,
		EndDate:   summary.EndDate,
		Narrative: text,
	})
}
