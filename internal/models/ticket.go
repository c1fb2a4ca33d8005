package models

import "time"

// Ticket is a user's named work category. Names are not unique; time
// entries refer to a ticket by name only.
type Ticket struct {
	ID         string     `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID     uint64     `gorm:"not null;index" json:"user_id"`
	Name       string     `gorm:"type:varchar(255);not null" json:"name"`
	Color      string     `gorm:"type:varchar(32);not null" json:"color"`
	IssueKey   string     `gorm:"type:varchar(255);not null" json:"issue_key"`
	ChatRoom   string     `gorm:"type:varchar(255);not null" json:"chat_room"`
	Archived   bool       `gorm:"not null" json:"archived"`
	ArchivedAt *time.Time `json:"archived_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TicketOrder is the user's manual ticket ordering.
type TicketOrder struct {
	UserID    uint64    `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	TicketIDs []string  `gorm:"serializer:json;type:text" json:"ticket_ids"`
	UpdatedAt time.Time `json:"updated_at"`
}
