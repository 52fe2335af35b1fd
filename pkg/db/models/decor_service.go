package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
)

// DecorService is a provider's bookable home-decoration offering.
type DecorService struct {
	ID        uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID                `gorm:"column:account_id;type:uuid;not null;index"`
	Style     string                   `gorm:"column:style;not null"`
	BasePrice decimal.Decimal          `gorm:"column:base_price;type:numeric(18,2);not null"`
	Status    enums.DecorServiceStatus `gorm:"column:status;type:text;not null;default:'available'"`
	StartDate time.Time                `gorm:"column:start_date;not null"`
	CreatedAt time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
