package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes used by the timer, listing and summary queries.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Summary and listing filter by user and start time
		{"time_entries", "idx_time_entries_user_start", "user_id, start_time"},
		// Archived ticket cleanup counts entries by ticket name
		{"time_entries", "idx_time_entries_user_ticket", "user_id, ticket_name"},
		{"tickets", "idx_tickets_user_archived", "user_id, archived"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index",
			zap.String("index", idx.name),
			zap.String("table", idx.table),
			zap.String("columns", idx.columns),
		)
	}

	return nil
}

// usernameCollationSQL pins users.username to a binary collation. MySQL's
// default collation folds case, which would let "Alice" log in as "alice".
const usernameCollationSQL = "ALTER TABLE users MODIFY username VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL"

// UseExactUsernameCollation makes username comparisons byte-exact on MySQL.
// sqlite and Postgres already compare exactly and are left alone.
func UseExactUsernameCollation(db *gorm.DB, log *zap.Logger) error {
	if db.Dialector.Name() != "mysql" {
		return nil
	}
	if err := db.Exec(usernameCollationSQL).Error; err != nil {
		return fmt.Errorf("failed to set username collation: %w", err)
	}
	log.Info("username column uses binary collation")
	return nil
}
