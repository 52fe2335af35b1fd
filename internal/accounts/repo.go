package accounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
)

// Repository is the account directory surface this core needs: provider
// workflow state and the customer's active-booking flag. Accounts themselves
// are owned by the external account service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindWalletByAccount(ctx context.Context, accountID uuid.UUID) (*models.Wallet, error)
	SetProviderStatus(ctx context.Context, id uuid.UUID, status enums.ProviderStatus) error
	SetActiveBookingFlag(ctx context.Context, id uuid.UUID, active bool) error
	IncrementReputation(ctx context.Context, id uuid.UUID, delta, max int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an account directory bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindWalletByAccount(ctx context.Context, accountID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) SetProviderStatus(ctx context.Context, id uuid.UUID, status enums.ProviderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("provider_status", status).Error
}

func (r *repository) SetActiveBookingFlag(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("has_active_booking", active).Error
}

func (r *repository) IncrementReputation(ctx context.Context, id uuid.UUID, delta, max int) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("reputation", gorm.Expr(
			"CASE WHEN reputation + ? > ? THEN ? ELSE reputation + ? END",
			delta, max, max, delta,
		)).Error
}
