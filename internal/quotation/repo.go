package quotation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
)

// Repository persists quotations and the booking/service rows the quotation
// flow validates against.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, quotation *models.Quotation) error
	FindByCode(ctx context.Context, code string) (*models.Quotation, error)
	FindActiveByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Quotation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.QuotationStatus) error

	FindBookingByCode(ctx context.Context, code string) (*models.Booking, error)
	FindBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindDecorServiceByID(ctx context.Context, id uuid.UUID) (*models.DecorService, error)
	UpdateBookingTotalPrice(ctx context.Context, bookingID uuid.UUID, total decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a quotation repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, quotation *models.Quotation) error {
	if quotation.ID == uuid.Nil {
		quotation.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(quotation).Error
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Quotation, error) {
	var quotation models.Quotation
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&quotation).Error; err != nil {
		return nil, err
	}
	return &quotation, nil
}

// FindActiveByBooking returns the booking's single non-denied quotation, or
// gorm.ErrRecordNotFound when the booking is open for a new proposal.
func (r *repository) FindActiveByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Quotation, error) {
	var quotation models.Quotation
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status <> ?", bookingID, enums.QuotationStatusDenied).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.QuotationStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) FindBookingByCode(ctx context.Context, code string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindDecorServiceByID(ctx context.Context, id uuid.UUID) (*models.DecorService, error) {
	var service models.DecorService
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *repository) UpdateBookingTotalPrice(ctx context.Context, bookingID uuid.UUID, total decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("total_price", total).Error
}
