package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
)

// Booking identifies a single service engagement. Bookings are never deleted;
// they only move to a terminal status.
type Booking struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code           string              `gorm:"column:code;not null;uniqueIndex"`
	AccountID      uuid.UUID           `gorm:"column:account_id;type:uuid;not null;index"`
	DecorServiceID uuid.UUID           `gorm:"column:decor_service_id;type:uuid;not null;index"`
	AddressID      uuid.UUID           `gorm:"column:address_id;type:uuid;not null;index"`
	Status         enums.BookingStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalPrice     decimal.Decimal     `gorm:"column:total_price;type:numeric(18,2);not null;default:0"`
	DepositAmount  decimal.Decimal     `gorm:"column:deposit_amount;type:numeric(18,2);not null;default:0"`
	Note           *string             `gorm:"column:note"`
	SurveyDate     time.Time           `gorm:"column:survey_date;not null"`
	CancelType     *enums.CancelType   `gorm:"column:cancel_type;type:text"`
	CancelReason   *string             `gorm:"column:cancel_reason"`
	RejectReason   *string             `gorm:"column:reject_reason"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
