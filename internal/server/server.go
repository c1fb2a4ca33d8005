package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/timesheet-api/internal/clock"
	"github.com/yukikurage/timesheet-api/internal/config"
	"github.com/yukikurage/timesheet-api/internal/constants"
	"github.com/yukikurage/timesheet-api/internal/handlers"
	"github.com/yukikurage/timesheet-api/internal/logger"
	"github.com/yukikurage/timesheet-api/internal/middleware"
	"github.com/yukikurage/timesheet-api/internal/repository"
	"github.com/yukikurage/timesheet-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	log        *zap.Logger
}

// New constructs a Server listening on cfg.Port.
func New(cfg *config.Config, db *gorm.DB, log *zap.Logger) (*Server, error) {
	store, err := NewSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	router, err := NewRouter(cfg, db, store, clock.Real(), log)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		log:        log,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// NewSessionStore builds the cookie or redis backed session store
// selected by SESSION_STORE.
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "", "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	case "redis":
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,    // pool size
			"tcp", // network type
			redisAddr,
			"", // username
			"", // password
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		store = rs
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// NewRouter wires repositories, services and handlers into a gin engine.
func NewRouter(cfg *config.Config, db *gorm.DB, store sessions.Store, clk clock.Clock, log *zap.Logger) (*gin.Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	entryRepo := repository.NewTimeEntryRepository(db)

	locks := services.NewUserLocks()
	authService := services.NewAuthService(userRepo, log, services.WithRegistration(cfg.AllowRegistration))
	ticketService := services.NewTicketService(ticketRepo, clk, log)
	timerService := services.NewTimerService(entryRepo, locks, clk, log)
	entryService := services.NewEntryService(entryRepo, locks, clk, log)
	summaryService := services.NewSummaryService(entryRepo, clk, loc)
	reportService := services.NewReportService(log)
	aiService := newAIService(cfg)

	authHandler := handlers.NewAuthHandler(authService)
	ticketHandler := handlers.NewTicketHandler(ticketService)
	timerHandler := handlers.NewTimerHandler(timerService, loc)
	entryHandler := handlers.NewEntryHandler(entryService, loc)
	summaryHandler := handlers.NewSummaryHandler(summaryService, reportService, aiService)
	dashboardHandler := handlers.NewDashboardHandler(ticketService, timerService, entryService, summaryService, log)

	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(log))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Timesheet API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.POST("/password", middleware.RequireAuth(), authHandler.ChangePassword)
		}

		api.GET("/dashboard", middleware.RequireAuth(), dashboardHandler.GetDashboard)

		tickets := api.Group("/tickets")
		tickets.Use(middleware.RequireAuth())
		{
			tickets.GET("", ticketHandler.ListTickets)
			tickets.POST("", ticketHandler.CreateTicket)
			tickets.GET("/archived", ticketHandler.ListArchivedTickets)
			tickets.PUT("/order", ticketHandler.SaveTicketOrder)
			tickets.POST("/cleanup", ticketHandler.CleanupArchivedTickets)
			tickets.GET("/:id", middleware.RequireTicketAccess(ticketService), ticketHandler.GetTicket)
			tickets.PUT("/:id", ticketHandler.UpdateTicket)
			tickets.DELETE("/:id", ticketHandler.DeleteTicket)
			tickets.POST("/:id/archive", ticketHandler.ArchiveTicket)
			tickets.POST("/:id/restore", ticketHandler.RestoreTicket)
		}

		timer := api.Group("/timer")
		timer.Use(middleware.RequireAuth())
		{
			timer.POST("/start", timerHandler.StartTimer)
			timer.POST("/stop", timerHandler.StopTimer)
			timer.GET("/current", timerHandler.GetCurrent)
		}

		entries := api.Group("/entries")
		entries.Use(middleware.RequireAuth())
		{
			entries.GET("", entryHandler.ListEntries)
			entries.PUT("/:id", entryHandler.UpdateEntry)
			entries.DELETE("/:id", entryHandler.DeleteEntry)
		}

		summary := api.Group("/summary")
		summary.Use(middleware.RequireAuth())
		{
			summary.GET("", summaryHandler.GetSummary)
			summary.GET("/pdf", summaryHandler.GetSummaryPDF)
			summary.GET("/narrative", summaryHandler.GetNarrative)
		}
	}

	return r, nil
}

// newAIService returns a disabled service unless an API key is configured.
func newAIService(cfg *config.Config) *services.AIService {
	if cfg.OpenAIAPIKey == "" {
		return services.NewAIService("")
	}
	aiConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		aiConfig.BaseURL = cfg.OpenAIBaseURL
	}
	return services.NewAIServiceWithConfig(aiConfig, cfg.OpenAIModel)
}
