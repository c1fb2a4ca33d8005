package database

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timesheet-api/internal/config"
	"github.com/yukikurage/timesheet-api/internal/models"
	"github.com/yukikurage/timesheet-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	cases := map[string]string{
		"sqlite":   "sqlite",
		"mysql":    "mysql",
		"postgres": "postgres",
	}
	for driver, name := range cases {
		cfg := &config.Config{DBDriver: driver, DBPath: t.TempDir() + "/timesheet.db"}
		dialector, err := Dialector(cfg)
		require.NoError(t, err, driver)
		require.Equal(t, name, dialector.Name())
	}

	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	require.Error(t, err)
}

func TestMigrate_CreatesTablesAndIndexes(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	log := zap.NewNop()
	require.NoError(t, Migrate(db, log))
	// second run must be a no-op
	require.NoError(t, Migrate(db, log))

	for _, model := range models.All() {
		require.True(t, db.Migrator().HasTable(model))
	}
	require.True(t, db.Migrator().HasIndex("time_entries", "idx_time_entries_user_start"))
	require.True(t, db.Migrator().HasIndex("time_entries", "idx_time_entries_user_ticket"))
}

func TestPaginate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, db.Create(&models.User{Username: name, PasswordHash: "x"}).Error)
	}

	var users []models.User
	require.NoError(t, db.Scopes(Paginate(&utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})).Order("id").Find(&users).Error)
	require.Len(t, users, 1)
	require.Equal(t, "c", users[0].Username)

	users = nil
	require.NoError(t, db.Scopes(Paginate(nil)).Find(&users).Error)
	require.Len(t, users, 3)
}

func TestUseExactUsernameCollation_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Discard,
	})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(usernameCollationSQL)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, UseExactUsernameCollation(db, zap.NewNop()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUseExactUsernameCollation_SkipsOtherDialects(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Discard,
	})
	require.NoError(t, err)

	// no statement may reach the database
	require.NoError(t, UseExactUsernameCollation(db, zap.NewNop()))
	require.NoError(t, mock.ExpectationsWereMet())
}
