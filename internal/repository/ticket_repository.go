package repository

import (
	"time"

	"github.com/yukikurage/timesheet-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTicketRepository is a GORM implementation of TicketRepository
type GormTicketRepository struct {
	db *gorm.DB
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &GormTicketRepository{db: db}
}

// Create creates a new ticket
func (r *GormTicketRepository) Create(ticket *models.Ticket) error {
	return r.db.Create(ticket).Error
}

// FindByID finds one of the user's tickets
func (r *GormTicketRepository) FindByID(userID uint64, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// List returns the user's tickets, archived ones only when requested
func (r *GormTicketRepository) List(userID uint64, includeArchived bool) ([]models.Ticket, error) {
	var tickets []models.Ticket
	query := r.db.Where("user_id = ?", userID)
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}
	if err := query.Order("name ASC").Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// ListArchived returns the user's archived tickets ordered by name
func (r *GormTicketRepository) ListArchived(userID uint64) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := r.db.Where("user_id = ? AND archived = ?", userID, true).
		Order("name ASC").
		Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// Update overwrites the mutable fields of a ticket
func (r *GormTicketRepository) Update(userID uint64, id string, fields TicketFields) error {
	return r.updateOwned(userID, id, map[string]interface{}{
		"name":      fields.Name,
		"color":     fields.Color,
		"issue_key": fields.IssueKey,
		"chat_room": fields.ChatRoom,
	})
}

// SetArchived archives (archivedAt != nil) or restores (nil) a ticket
func (r *GormTicketRepository) SetArchived(userID uint64, id string, archivedAt *time.Time) error {
	return r.updateOwned(userID, id, map[string]interface{}{
		"archived":    archivedAt != nil,
		"archived_at": archivedAt,
	})
}

func (r *GormTicketRepository) updateOwned(userID uint64, id string, values map[string]interface{}) error {
	result := r.db.Model(&models.Ticket{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete hard deletes a ticket. Time entries keep the ticket name.
func (r *GormTicketRepository) Delete(userID uint64, id string) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Ticket{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindOrder returns the user's saved ticket order, empty if none
func (r *GormTicketRepository) FindOrder(userID uint64) ([]string, error) {
	var order models.TicketOrder
	err := r.db.Where("user_id = ?", userID).Limit(1).Find(&order).Error
	if err != nil {
		return nil, err
	}
	return order.TicketIDs, nil
}

// SaveOrder replaces the user's saved ticket order
func (r *GormTicketRepository) SaveOrder(userID uint64, ticketIDs []string) error {
	order := models.TicketOrder{
		UserID:    userID,
		TicketIDs: ticketIDs,
	}
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"ticket_ids", "updated_at"}),
		}).
		Create(&order).Error
}

// DeleteArchivedWithoutEntriesSince deletes stale archived tickets in one transaction
func (r *GormTicketRepository) DeleteArchivedWithoutEntriesSince(userID uint64, since time.Time) (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var archived []models.Ticket
		if err := tx.Where("user_id = ? AND archived = ?", userID, true).Find(&archived).Error; err != nil {
			return err
		}

		for _, ticket := range archived {
			var recent int64
			if err := tx.Model(&models.TimeEntry{}).
				Where("user_id = ? AND ticket_name = ? AND start_time >= ?", userID, ticket.Name, since.UTC()).
				Count(&recent).Error; err != nil {
				return err
			}
			if recent > 0 {
				continue
			}

			result := tx.Where("id = ? AND user_id = ?", ticket.ID, userID).Delete(&models.Ticket{})
			if result.Error != nil {
				return result.Error
			}
			deleted += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
