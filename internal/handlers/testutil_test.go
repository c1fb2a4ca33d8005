package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timesheet-api/internal/clock"
	"github.com/yukikurage/timesheet-api/internal/constants"
	"github.com/yukikurage/timesheet-api/internal/middleware"
	"github.com/yukikurage/timesheet-api/internal/models"
	"github.com/yukikurage/timesheet-api/internal/repository"
	"github.com/yukikurage/timesheet-api/internal/services"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC)

type handlerTestEnv struct {
	db    *gorm.DB
	clock *clock.FakeClock

	authService    *services.AuthService
	ticketService  *services.TicketService
	timerService   *services.TimerService
	entryService   *services.EntryService
	summaryService *services.SummaryService

	auth      *AuthHandler
	tickets   *TicketHandler
	timer     *TimerHandler
	entries   *EntryHandler
	summary   *SummaryHandler
	dashboard *DashboardHandler
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(models.All()...))

	log := zap.NewNop()
	clk := clock.Fake(testNow)
	locks := services.NewUserLocks()
	entryRepo := repository.NewTimeEntryRepository(db)

	env := handlerTestEnv{
		db:             db,
		clock:          clk,
		authService:    services.NewAuthService(repository.NewUserRepository(db), log, services.WithHashCost(bcrypt.MinCost)),
		ticketService:  services.NewTicketService(repository.NewTicketRepository(db), clk, log),
		timerService:   services.NewTimerService(entryRepo, locks, clk, log),
		entryService:   services.NewEntryService(entryRepo, locks, clk, log),
		summaryService: services.NewSummaryService(entryRepo, clk, time.UTC),
	}

	env.auth = NewAuthHandler(env.authService)
	env.tickets = NewTicketHandler(env.ticketService)
	env.timer = NewTimerHandler(env.timerService, time.UTC)
	env.entries = NewEntryHandler(env.entryService, time.UTC)
	env.summary = NewSummaryHandler(env.summaryService, services.NewReportService(log), services.NewAIService(""))
	env.dashboard = NewDashboardHandler(env.ticketService, env.timerService, env.entryService, env.summaryService, log)
	return env
}

func (env handlerTestEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := env.authService.Signup(services.SignupInput{Username: username, Password: "supersecret"})
	require.NoError(t, err)
	return user
}

// router serves every authenticated route as userID.
func (env handlerTestEnv) router(userID uint64) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	})

	r.GET("/api/dashboard", env.dashboard.GetDashboard)

	r.GET("/api/tickets", env.tickets.ListTickets)
	r.POST("/api/tickets", env.tickets.CreateTicket)
	r.GET("/api/tickets/archived", env.tickets.ListArchivedTickets)
	r.PUT("/api/tickets/order", env.tickets.SaveTicketOrder)
	r.POST("/api/tickets/cleanup", env.tickets.CleanupArchivedTickets)
	r.GET("/api/tickets/:id", middleware.RequireTicketAccess(env.ticketService), env.tickets.GetTicket)
	r.PUT("/api/tickets/:id", env.tickets.UpdateTicket)
	r.DELETE("/api/tickets/:id", env.tickets.DeleteTicket)
	r.POST("/api/tickets/:id/archive", env.tickets.ArchiveTicket)
	r.POST("/api/tickets/:id/restore", env.tickets.RestoreTicket)

	r.POST("/api/timer/start", env.timer.StartTimer)
	r.POST("/api/timer/stop", env.timer.StopTimer)
	r.GET("/api/timer/current", env.timer.GetCurrent)

	r.GET("/api/entries", env.entries.ListEntries)
	r.PUT("/api/entries/:id", env.entries.UpdateEntry)
	r.DELETE("/api/entries/:id", env.entries.DeleteEntry)

	r.GET("/api/summary", env.summary.GetSummary)
	r.GET("/api/summary/pdf", env.summary.GetSummaryPDF)
	r.GET("/api/summary/narrative", env.summary.GetNarrative)

	r.POST("/api/auth/password", env.auth.ChangePassword)
	return r
}

// sessionRouter serves the public auth routes behind a cookie session store.
func (env handlerTestEnv) sessionRouter() *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/api/auth/signup", env.auth.Signup)
	r.POST("/api/auth/login", env.auth.Login)
	r.POST("/api/auth/logout", env.auth.Logout)
	r.GET("/api/auth/me", middleware.RequireAuth(), env.auth.GetCurrentUser)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, payload interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, path, &body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
