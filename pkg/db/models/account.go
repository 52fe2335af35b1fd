package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
)

// Account mirrors the account record owned by the external account service.
// This core mutates only the provider/customer workflow fields below.
type Account struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string               `gorm:"column:email;not null;uniqueIndex"`
	DisplayName      string               `gorm:"column:display_name;not null"`
	IsProvider       bool                 `gorm:"column:is_provider;not null;default:false"`
	ProviderStatus   enums.ProviderStatus `gorm:"column:provider_status;type:text;not null;default:'idle'"`
	Reputation       int                  `gorm:"column:reputation;not null;default:0"`
	HasActiveBooking bool                 `gorm:"column:has_active_booking;not null;default:false"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
