package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is a customer delivery/survey location.
type Address struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID      `gorm:"column:account_id;type:uuid;not null;index"`
	Line1     string         `gorm:"column:line1;not null"`
	Line2     *string        `gorm:"column:line2"`
	City      string         `gorm:"column:city;not null"`
	Province  string         `gorm:"column:province;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}
