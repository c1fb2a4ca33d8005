package repository

import (
	"errors"
	"time"

	"github.com/yukikurage/timesheet-api/internal/database"
	"github.com/yukikurage/timesheet-api/internal/models"
	"github.com/yukikurage/timesheet-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTimeEntryRepository is a GORM implementation of TimeEntryRepository
type GormTimeEntryRepository struct {
	db *gorm.DB
}

// NewTimeEntryRepository creates a new TimeEntryRepository
func NewTimeEntryRepository(db *gorm.DB) TimeEntryRepository {
	return &GormTimeEntryRepository{db: db}
}

// FindByID finds one of the user's entries
func (r *GormTimeEntryRepository) FindByID(userID uint64, id string) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns the user's entries ordered by start time descending
func (r *GormTimeEntryRepository) List(userID uint64, page *utils.PaginationParams) ([]models.TimeEntry, error) {
	var entries []models.TimeEntry
	if err := r.db.Where("user_id = ?", userID).
		Order("start_time DESC").
		Scopes(database.Paginate(page)).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListClosedBetween returns closed entries whose start lies in [from, to]
func (r *GormTimeEntryRepository) ListClosedBetween(userID uint64, from, to time.Time) ([]models.TimeEntry, error) {
	var entries []models.TimeEntry
	if err := r.db.
		Where("user_id = ? AND start_time >= ? AND start_time <= ? AND end_time IS NOT NULL",
			userID, from.UTC(), to.UTC()).
		Order("start_time DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindCurrent returns the user's current-entry pointer
func (r *GormTimeEntryRepository) FindCurrent(userID uint64) (*models.CurrentEntry, error) {
	var current models.CurrentEntry
	if err := r.db.Where("user_id = ?", userID).First(&current).Error; err != nil {
		return nil, err
	}
	return &current, nil
}

// FindRunning returns the entry the pointer references, provided it is
// still open. Pointer and entry are read in a single statement.
func (r *GormTimeEntryRepository) FindRunning(userID uint64) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := r.db.Model(&models.TimeEntry{}).
		Joins("JOIN current_entries ON current_entries.entry_id = time_entries.id AND current_entries.user_id = time_entries.user_id").
		Where("current_entries.user_id = ? AND time_entries.end_time IS NULL", userID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Start closes any running entry at now, inserts entry and points at it
func (r *GormTimeEntryRepository) Start(entry *models.TimeEntry, now time.Time) error {
	entry.StartTime = entry.StartTime.UTC()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockCurrent(tx, entry.UserID); err != nil {
			return err
		}

		if err := closeRunning(tx, entry.UserID, "", now); err != nil {
			return err
		}

		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		return pointAt(tx, entry.UserID, entry.ID)
	})
}

// Stop closes the running entry at now and clears the pointer
func (r *GormTimeEntryRepository) Stop(userID uint64, now time.Time) (*models.TimeEntry, error) {
	var stopped *models.TimeEntry
	err := r.db.Transaction(func(tx *gorm.DB) error {
		current, err := lockCurrent(tx, userID)
		if err != nil {
			return err
		}
		if current == nil {
			return nil
		}

		end := now.UTC()
		if err := tx.Model(&models.TimeEntry{}).
			Where("id = ? AND user_id = ? AND end_time IS NULL", current.EntryID, userID).
			Update("end_time", end).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CurrentEntry{}).Error; err != nil {
			return err
		}

		var entry models.TimeEntry
		err = tx.Where("id = ? AND user_id = ?", current.EntryID, userID).First(&entry).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// pointer referenced a vanished entry; clearing it is all there is to do
			return nil
		case err != nil:
			return err
		}
		stopped = &entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stopped, nil
}

// Update overwrites start, end and memo. Writing an end time to the
// running entry clears the pointer; clearing the end time of another
// entry reopens it as the running one, closing whatever ran before at now.
func (r *GormTimeEntryRepository) Update(userID uint64, id string, start time.Time, end *time.Time, memo string, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		current, err := lockCurrent(tx, userID)
		if err != nil {
			return err
		}

		var endValue interface{}
		if end != nil {
			endValue = end.UTC()
		}

		result := tx.Model(&models.TimeEntry{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(map[string]interface{}{
				"start_time": start.UTC(),
				"end_time":   endValue,
				"memo":       memo,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		isCurrent := current != nil && current.EntryID == id
		switch {
		case end != nil && isCurrent:
			return tx.Where("user_id = ?", userID).Delete(&models.CurrentEntry{}).Error
		case end == nil && !isCurrent:
			if err := closeRunning(tx, userID, id, now); err != nil {
				return err
			}
			return pointAt(tx, userID, id)
		}
		return nil
	})
}

// Delete removes an entry and clears the pointer if it referenced it
func (r *GormTimeEntryRepository) Delete(userID uint64, id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockCurrent(tx, userID); err != nil {
			return err
		}

		if err := tx.Where("user_id = ? AND entry_id = ?", userID, id).
			Delete(&models.CurrentEntry{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.TimeEntry{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// lockCurrent reads the pointer row with a row lock where the dialect
// supports one. It returns nil when the user is idle.
func lockCurrent(tx *gorm.DB, userID uint64) (*models.CurrentEntry, error) {
	var currents []models.CurrentEntry
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&currents).Error; err != nil {
		return nil, err
	}
	if len(currents) == 0 {
		return nil, nil
	}
	return &currents[0], nil
}

// closeRunning sets end_time = now on every open entry of the user except keepID.
func closeRunning(tx *gorm.DB, userID uint64, keepID string, now time.Time) error {
	query := tx.Model(&models.TimeEntry{}).Where("user_id = ? AND end_time IS NULL", userID)
	if keepID != "" {
		query = query.Where("id <> ?", keepID)
	}
	return query.Update("end_time", now.UTC()).Error
}

func pointAt(tx *gorm.DB, userID uint64, entryID string) error {
	current := models.CurrentEntry{
		UserID:  userID,
		EntryID: entryID,
	}
	return tx.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"entry_id", "updated_at"}),
		}).
		Create(&current).Error
}
