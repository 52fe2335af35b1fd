package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
	"github.com/trongle278/seasondecorbe-sub000/pkg/pagination"
)

// Repository owns wallet balances and the transaction audit trail. Balance
// mutations happen only through this interface, inside a ledger transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// FindWalletByAccount loads the account's wallet. With forUpdate set the
	// row is locked for the duration of the surrounding transaction on
	// dialects that support it.
	FindWalletByAccount(ctx context.Context, accountID uuid.UUID, forUpdate bool) (*models.Wallet, error)
	UpdateBalance(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal) error

	CreatePaymentTransaction(ctx context.Context, transaction *models.PaymentTransaction) error
	CreateWalletTransaction(ctx context.Context, transaction *models.WalletTransaction) error

	// SumSuccessByBooking totals committed transaction amounts of the given
	// types for one booking. Used to bound refunds.
	SumSuccessByBooking(ctx context.Context, bookingID uuid.UUID, types []enums.TransactionType) (decimal.Decimal, error)
	ListWalletTransactions(ctx context.Context, walletID uuid.UUID, params pagination.Params) ([]models.PaymentTransaction, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) FindWalletByAccount(ctx context.Context, accountID uuid.UUID, forUpdate bool) (*models.Wallet, error) {
	q := r.db.WithContext(ctx)
	// sqlite has no SELECT ... FOR UPDATE; its writer lock covers the gap.
	if forUpdate && r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var wallet models.Wallet
	if err := q.Where("account_id = ?", accountID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) UpdateBalance(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", balance).Error
}

func (r *repository) CreatePaymentTransaction(ctx context.Context, transaction *models.PaymentTransaction) error {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *repository) CreateWalletTransaction(ctx context.Context, transaction *models.WalletTransaction) error {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *repository) SumSuccessByBooking(ctx context.Context, bookingID uuid.UUID, types []enums.TransactionType) (decimal.Decimal, error) {
	var raw *string
	err := r.db.WithContext(ctx).
		Model(&models.PaymentTransaction{}).
		Select("CAST(SUM(amount) AS TEXT)").
		Where("booking_id = ? AND status = ? AND type IN ?", bookingID, enums.TransactionStatusSuccess, types).
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

// ListWalletTransactions pages the payment transactions that touched one
// wallet, newest first.
func (r *repository) ListWalletTransactions(ctx context.Context, walletID uuid.UUID, params pagination.Params) ([]models.PaymentTransaction, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	q := r.db.WithContext(ctx).
		Model(&models.PaymentTransaction{}).
		Joins("JOIN wallet_transactions ON wallet_transactions.payment_transaction_id = payment_transactions.id").
		Where("wallet_transactions.wallet_id = ?", walletID).
		Order("payment_transactions.created_at DESC, payment_transactions.id DESC").
		Limit(pagination.FetchLimit(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		q = q.Where(
			"(payment_transactions.created_at, payment_transactions.id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.PaymentTransaction
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
