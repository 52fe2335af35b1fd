package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
	"github.com/trongle278/seasondecorbe-sub000/pkg/pagination"
)

// Repository persists bookings and their satellite rows (survey slots,
// trackers) plus the quotation lookups the state machine guards on.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, booking *models.Booking) error
	FindByCode(ctx context.Context, code string, forUpdate bool) (*models.Booking, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.Booking, string, error)

	// CountActiveByAddress counts the account's non-terminal bookings pinned
	// to one address.
	CountActiveByAddress(ctx context.Context, accountID, addressID uuid.UUID) (int64, error)
	CountActiveByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)

	FindConfirmedQuotation(ctx context.Context, bookingID uuid.UUID) (*models.Quotation, error)
	MarkQuotationMaterialsFulfilled(ctx context.Context, bookingID uuid.UUID, at time.Time) error
	MarkQuotationLaborFulfilled(ctx context.Context, bookingID uuid.UUID, at time.Time) error

	CreateTimeSlot(ctx context.Context, slot *models.BookingTimeSlot) error
	UpdateTimeSlot(ctx context.Context, bookingID uuid.UUID, surveyDate time.Time) error
	CreateTracker(ctx context.Context, tracker *models.BookingTracker) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a booking repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) FindByCode(ctx context.Context, code string, forUpdate bool) (*models.Booking, error) {
	q := r.db.WithContext(ctx)
	if forUpdate && r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var booking models.Booking
	if err := q.Where("code = ?", code).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListByAccount pages the bookings an account participates in, as customer
// or as the provider behind the booked service, newest first.
func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.Booking, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	q := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Joins("JOIN decor_services ON decor_services.id = bookings.decor_service_id").
		Where("bookings.account_id = ? OR decor_services.account_id = ?", accountID, accountID).
		Order("bookings.created_at DESC, bookings.id DESC").
		Limit(pagination.FetchLimit(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		q = q.Where("(bookings.created_at, bookings.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Booking
	if err := q.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return rows, next, nil
}

func (r *repository) CountActiveByAddress(ctx context.Context, accountID, addressID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("account_id = ? AND address_id = ? AND status NOT IN ?", accountID, addressID, terminalStatuses()).
		Count(&n).Error
	return n, err
}

func (r *repository) CountActiveByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("account_id = ? AND status NOT IN ?", accountID, terminalStatuses()).
		Count(&n).Error
	return n, err
}

func (r *repository) FindConfirmedQuotation(ctx context.Context, bookingID uuid.UUID) (*models.Quotation, error) {
	var quotation models.Quotation
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status = ?", bookingID, enums.QuotationStatusConfirmed).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *repository) MarkQuotationMaterialsFulfilled(ctx context.Context, bookingID uuid.UUID, at time.Time) error {
	return r.markQuotationFulfilled(ctx, bookingID, "materials_fulfilled_at", at)
}

func (r *repository) MarkQuotationLaborFulfilled(ctx context.Context, bookingID uuid.UUID, at time.Time) error {
	return r.markQuotationFulfilled(ctx, bookingID, "labor_fulfilled_at", at)
}

func (r *repository) markQuotationFulfilled(ctx context.Context, bookingID uuid.UUID, column string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("booking_id = ? AND status = ?", bookingID, enums.QuotationStatusConfirmed).
		Update(column, at).Error
}

func (r *repository) CreateTimeSlot(ctx context.Context, slot *models.BookingTimeSlot) error {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *repository) UpdateTimeSlot(ctx context.Context, bookingID uuid.UUID, surveyDate time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.BookingTimeSlot{}).
		Where("booking_id = ?", bookingID).
		Update("survey_date", surveyDate).Error
}

func (r *repository) CreateTracker(ctx context.Context, tracker *models.BookingTracker) error {
	if tracker.ID == uuid.Nil {
		tracker.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(tracker).Error
}

func terminalStatuses() []enums.BookingStatus {
	return []enums.BookingStatus{
		enums.BookingStatusCompleted,
		enums.BookingStatusCanceled,
		enums.BookingStatusRejected,
	}
}
