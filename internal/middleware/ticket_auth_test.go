package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timesheet-api/internal/clock"
	"github.com/yukikurage/timesheet-api/internal/constants"
	"github.com/yukikurage/timesheet-api/internal/models"
	"github.com/yukikurage/timesheet-api/internal/repository"
	"github.com/yukikurage/timesheet-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTicketService(t *testing.T) *services.TicketService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	clk := clock.Fake(time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC))
	return services.NewTicketService(repository.NewTicketRepository(db), clk, zap.NewNop())
}

func ticketRouter(ticketService *services.TicketService, userID interface{}) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != nil {
			c.Set(constants.ContextKeyUserID, userID)
		}
		c.Next()
	})
	r.GET("/tickets/:id", RequireTicketAccess(ticketService), func(c *gin.Context) {
		ticket, ok := GetTicket(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, ticket.Name)
	})
	return r
}

func TestRequireTicketAccess(t *testing.T) {
	ticketService := newTicketService(t)
	ticket, err := ticketService.AddTicket(1, services.TicketInput{Name: "Billing"})
	require.NoError(t, err)

	serve := func(userID interface{}, id string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		ticketRouter(ticketService, userID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets/"+id, nil))
		return w
	}

	w := serve(uint64(1), ticket.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Billing", w.Body.String())

	// someone else's ticket looks exactly like a missing one
	assert.Equal(t, http.StatusNotFound, serve(uint64(2), ticket.ID).Code)
	assert.Equal(t, http.StatusNotFound, serve(uint64(1), "missing").Code)

	assert.Equal(t, http.StatusUnauthorized, serve(nil, ticket.ID).Code)
}
