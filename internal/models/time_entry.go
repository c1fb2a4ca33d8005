package models

import "time"

type TimeEntry struct {
	ID         string     `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID     uint64     `gorm:"not null" json:"user_id"`
	TicketName string     `gorm:"type:varchar(255);not null" json:"ticket_name"`
	StartTime  time.Time  `gorm:"not null" json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	Memo       string     `gorm:"type:text" json:"memo"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Running reports whether the entry has no end time yet.
func (e TimeEntry) Running() bool {
	return e.EndTime == nil
}

// Duration returns end - start for closed entries and zero otherwise.
func (e TimeEntry) Duration() time.Duration {
	if e.EndTime == nil {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}

// CurrentEntry points at the user's running time entry. A row exists
// only while that entry has a null end time.
type CurrentEntry struct {
	UserID    uint64    `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	EntryID   string    `gorm:"type:varchar(36);not null" json:"entry_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
