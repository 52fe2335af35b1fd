package decorservices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
)

// Repository is the decor-service directory: lookups plus the availability
// toggle the booking state machine flips on planning/cancellation.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.DecorService, error)
	SetAvailability(ctx context.Context, id uuid.UUID, status enums.DecorServiceStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a decor-service repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DecorService, error) {
	var svc models.DecorService
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *repository) SetAvailability(ctx context.Context, id uuid.UUID, status enums.DecorServiceStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.DecorService{}).
		Where("id = ?", id).
		Update("status", status).Error
}
