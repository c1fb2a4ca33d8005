package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timesheet-api/internal/clock"
	"github.com/yukikurage/timesheet-api/internal/models"
	"github.com/yukikurage/timesheet-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testStart = time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC)

type serviceTestEnv struct {
	db      *gorm.DB
	clock   *clock.FakeClock
	auth    *AuthService
	tickets *TicketService
	timer   *TimerService
	entries *EntryService
	summary *SummaryService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db := newTestDB(t)
	clk := clock.Fake(testStart)
	log := zap.NewNop()
	locks := NewUserLocks()

	entryRepo := repository.NewTimeEntryRepository(db)

	return serviceTestEnv{
		db:      db,
		clock:   clk,
		auth:    NewAuthService(repository.NewUserRepository(db), log, WithHashCost(bcrypt.MinCost)),
		tickets: NewTicketService(repository.NewTicketRepository(db), clk, log),
		timer:   NewTimerService(entryRepo, locks, clk, log),
		entries: NewEntryService(entryRepo, locks, clk, log),
		summary: NewSummaryService(entryRepo, clk, time.UTC),
	}
}

func (env serviceTestEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := env.auth.Signup(SignupInput{Username: username, Password: "supersecret"})
	require.NoError(t, err)
	return user
}

// insertEntry stores a closed entry directly, bypassing the timer.
func (env serviceTestEnv) insertEntry(t *testing.T, userID uint64, id, ticketName string, start time.Time, d time.Duration) {
	t.Helper()
	end := start.Add(d).UTC()
	require.NoError(t, env.db.Create(&models.TimeEntry{
		ID:         id,
		UserID:     userID,
		TicketName: ticketName,
		StartTime:  start.UTC(),
		EndTime:    &end,
	}).Error)
}

func (env serviceTestEnv) runningCount(t *testing.T, userID uint64) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.db.Model(&models.TimeEntry{}).
		Where("user_id = ? AND end_time IS NULL", userID).
		Count(&count).Error)
	return count
}
