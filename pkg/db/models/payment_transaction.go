package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
)

// PaymentTransaction is an immutable record of one money movement leg. A
// logical operation produces one row per leg, all referencing the same
// booking or order.
type PaymentTransaction struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Amount    decimal.Decimal         `gorm:"column:amount;type:numeric(18,2);not null"`
	Type      enums.TransactionType   `gorm:"column:type;type:text;not null"`
	Status    enums.TransactionStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	BookingID *uuid.UUID              `gorm:"column:booking_id;type:uuid;index"`
	OrderID   *uuid.UUID              `gorm:"column:order_id;type:uuid;index"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
}
