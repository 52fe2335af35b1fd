package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
)

// Quotation is a provider's priced proposal for one booking. At most one
// non-denied quotation exists per booking at a time; there is no separate
// "has quotation" flag on the booking, the presence of this row is it.
type Quotation struct {
	ID                   uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code                 string                `gorm:"column:code;not null;uniqueIndex"`
	BookingID            uuid.UUID             `gorm:"column:booking_id;type:uuid;not null;index"`
	MaterialCost         decimal.Decimal       `gorm:"column:material_cost;type:numeric(18,2);not null"`
	ConstructionCost     decimal.Decimal       `gorm:"column:construction_cost;type:numeric(18,2);not null"`
	ProductCost          decimal.Decimal       `gorm:"column:product_cost;type:numeric(18,2);not null;default:0"`
	DepositPercentage    decimal.Decimal       `gorm:"column:deposit_percentage;type:numeric(5,2);not null"`
	Status               enums.QuotationStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	MaterialsFulfilledAt *time.Time            `gorm:"column:materials_fulfilled_at"`
	LaborFulfilledAt     *time.Time            `gorm:"column:labor_fulfilled_at"`
	CreatedAt            time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
