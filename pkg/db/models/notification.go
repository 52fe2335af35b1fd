package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a fire-and-forget message dispatched to an account.
type Notification struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID  `gorm:"column:account_id;type:uuid;not null;index"`
	Title     string     `gorm:"column:title;not null"`
	Content   string     `gorm:"column:content;not null"`
	URL       *string    `gorm:"column:url"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
