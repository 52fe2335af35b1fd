package wallet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/trongle278/seasondecorbe-sub000/pkg/config"
	"github.com/trongle278/seasondecorbe-sub000/pkg/db/models"
	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
	pkgerrors "github.com/trongle278/seasondecorbe-sub000/pkg/errors"
	"github.com/trongle278/seasondecorbe-sub000/pkg/metrics"
	"github.com/trongle278/seasondecorbe-sub000/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the escrow ledger. Every operation is all-or-nothing: balance
// updates and transaction rows commit together or not at all, so a failed
// call leaves no partial effect and may be safely retried.
//
// Deposit and FinalPay run on a caller-owned transaction so the booking
// status change they fund commits or rolls back together with the money
// movement. The remaining operations own their transaction.
type Service interface {
	Deposit(ctx context.Context, tx *gorm.DB, customerID, providerID uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) error
	FinalPay(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, remaining decimal.Decimal, providerID, bookingID uuid.UUID, commissionRate decimal.Decimal) error
	OrderPay(ctx context.Context, customerID, providerID, orderID uuid.UUID, amount, commissionRate decimal.Decimal) error
	Refund(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) error
	TopUp(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) error

	Balance(ctx context.Context, accountID uuid.UUID) (*models.Wallet, error)
	Transactions(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.PaymentTransaction, string, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	cfg     config.LedgerConfig
	metrics *metrics.LedgerMetrics
}

// NewService wires the ledger with its repository, transaction runner and
// policy knobs. Metrics may be nil.
func NewService(repo Repository, tx txRunner, cfg config.LedgerConfig, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if repo == nil || tx == nil {
		return nil, fmt.Errorf("wallet service requires repository and tx runner")
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 10 * time.Second
	}
	return &service{repo: repo, tx: tx, cfg: cfg, metrics: ledgerMetrics}, nil
}

// run executes one self-contained ledger operation inside a bounded
// transaction and records its outcome.
func (s *service) run(ctx context.Context, operation string, fn func(repo Repository) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	start := time.Now()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(s.repo.WithTx(tx))
	})
	s.observe(operation, start, err)
	return err
}

func (s *service) observe(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(operation, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(operation)
	} else {
		s.metrics.IncSuccess(operation)
	}
}

func (s *service) Deposit(ctx context.Context, tx *gorm.DB, customerID, providerID uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "deposit amount must be positive")
	}
	start := time.Now()
	err := s.deposit(ctx, s.repo.WithTx(tx), customerID, providerID, amount, bookingID)
	s.observe("deposit", start, err)
	return err
}

func (s *service) deposit(ctx context.Context, repo Repository, customerID, providerID uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) error {
	wallets, err := lockWallets(ctx, repo, map[uuid.UUID]string{
		customerID: "customer",
		providerID: "provider",
	})
	if err != nil {
		return err
	}
	customer := wallets[customerID]
	provider := wallets[providerID]
	if customer.Balance.LessThan(amount) {
		return insufficientFunds(customer.Balance, amount)
	}

	if err := repo.UpdateBalance(ctx, customer.ID, customer.Balance.Sub(amount)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debit customer wallet")
	}
	if err := repo.UpdateBalance(ctx, provider.ID, provider.Balance.Add(amount)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "credit provider wallet")
	}

	legs := []leg{
		{wallet: customer.ID, amount: amount, txType: enums.TransactionTypeDeposit, booking: &bookingID},
		{wallet: provider.ID, amount: amount, txType: enums.TransactionTypeRevenue, booking: &bookingID},
	}
	return writeLegs(ctx, repo, legs)
}

func (s *service) FinalPay(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, remaining decimal.Decimal, providerID, bookingID uuid.UUID, commissionRate decimal.Decimal) error {
	split, err := s.splitCommission(remaining, commissionRate)
	if err != nil {
		return err
	}
	start := time.Now()
	err = s.settle(ctx, s.repo.WithTx(tx), customerID, providerID, split, enums.TransactionTypeFinalPay, &bookingID, nil)
	s.observe("final_pay", start, err)
	return err
}

func (s *service) OrderPay(ctx context.Context, customerID, providerID, orderID uuid.UUID, amount, commissionRate decimal.Decimal) error {
	split, err := s.splitCommission(amount, commissionRate)
	if err != nil {
		return err
	}
	return s.run(ctx, "order_pay", func(repo Repository) error {
		return s.settle(ctx, repo, customerID, providerID, split, enums.TransactionTypeOrderPay, nil, &orderID)
	})
}

// commissionSplit is a settlement resolved up front: the platform keeps
// amount*rate, the provider receives the rest, and the three parts always
// sum back to the amount.
type commissionSplit struct {
	amount          decimal.Decimal
	commission      decimal.Decimal
	providerReceive decimal.Decimal
}

func (s *service) splitCommission(amount, commissionRate decimal.Decimal) (commissionSplit, error) {
	if !amount.IsPositive() {
		return commissionSplit{}, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return commissionSplit{}, pkgerrors.New(pkgerrors.CodeValidation, "commission rate must be in [0,1)")
	}
	if s.cfg.PlatformAccountID == uuid.Nil {
		return commissionSplit{}, pkgerrors.New(pkgerrors.CodeInternal, "platform account not configured")
	}
	commission := amount.Mul(commissionRate).Round(2)
	return commissionSplit{
		amount:          amount,
		commission:      commission,
		providerReceive: amount.Sub(commission),
	}, nil
}

// settle moves a customer payment with a commission split. Exactly one of
// bookingID/orderID is set and keys all three legs.
func (s *service) settle(ctx context.Context, repo Repository, customerID, providerID uuid.UUID, split commissionSplit, customerType enums.TransactionType, bookingID, orderID *uuid.UUID) error {
	wallets, err := lockWallets(ctx, repo, map[uuid.UUID]string{
		customerID:              "customer",
		providerID:              "provider",
		s.cfg.PlatformAccountID: "platform",
	})
	if err != nil {
		return err
	}
	customer := wallets[customerID]
	provider := wallets[providerID]
	admin := wallets[s.cfg.PlatformAccountID]
	if customer.Balance.LessThan(split.amount) {
		return insufficientFunds(customer.Balance, split.amount)
	}

	if err := repo.UpdateBalance(ctx, customer.ID, customer.Balance.Sub(split.amount)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debit customer wallet")
	}
	if err := repo.UpdateBalance(ctx, provider.ID, provider.Balance.Add(split.providerReceive)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "credit provider wallet")
	}
	if err := repo.UpdateBalance(ctx, admin.ID, admin.Balance.Add(split.commission)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "credit platform wallet")
	}

	legs := []leg{
		{wallet: customer.ID, amount: split.amount, txType: customerType, booking: bookingID, order: orderID},
		{wallet: provider.ID, amount: split.providerReceive, txType: enums.TransactionTypeRevenue, booking: bookingID, order: orderID},
		{wallet: admin.ID, amount: split.commission, txType: enums.TransactionTypeRevenue, booking: bookingID, order: orderID},
	}
	return writeLegs(ctx, repo, legs)
}

func (s *service) Refund(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}
	if s.cfg.PlatformAccountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "platform account not configured")
	}
	return s.run(ctx, "refund", func(repo Repository) error {
		paid, err := repo.SumSuccessByBooking(ctx, bookingID, []enums.TransactionType{
			enums.TransactionTypeDeposit, enums.TransactionTypeFinalPay,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum booking payments")
		}
		refunded, err := repo.SumSuccessByBooking(ctx, bookingID, []enums.TransactionType{
			enums.TransactionTypeRefund,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum prior refunds")
		}
		if amount.GreaterThan(paid.Sub(refunded)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "refund exceeds the refundable amount for this booking")
		}

		wallets, err := lockWallets(ctx, repo, map[uuid.UUID]string{
			s.cfg.PlatformAccountID: "platform",
			customerID:              "customer",
		})
		if err != nil {
			return err
		}
		admin := wallets[s.cfg.PlatformAccountID]
		customer := wallets[customerID]
		if admin.Balance.LessThan(amount) {
			return insufficientFunds(admin.Balance, amount)
		}

		if err := repo.UpdateBalance(ctx, admin.ID, admin.Balance.Sub(amount)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debit platform wallet")
		}
		if err := repo.UpdateBalance(ctx, customer.ID, customer.Balance.Add(amount)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "credit customer wallet")
		}

		// A refund is one logical movement recorded once, joined to both
		// wallets it touched.
		transaction := &models.PaymentTransaction{
			Amount:    amount,
			Type:      enums.TransactionTypeRefund,
			Status:    enums.TransactionStatusSuccess,
			BookingID: &bookingID,
		}
		if err := repo.CreatePaymentTransaction(ctx, transaction); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record refund")
		}
		for _, walletID := range []uuid.UUID{admin.ID, customer.ID} {
			wt := &models.WalletTransaction{WalletID: walletID, PaymentTransactionID: transaction.ID}
			if err := repo.CreateWalletTransaction(ctx, wt); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record refund leg")
			}
		}
		return nil
	})
}

func (s *service) TopUp(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "top-up amount must be positive")
	}
	credited := amount.Mul(decimal.NewFromInt(s.cfg.TopUpUnitScale))
	return s.run(ctx, "top_up", func(repo Repository) error {
		wallet, err := lockWallet(ctx, repo, accountID, "account")
		if err != nil {
			return err
		}
		if err := repo.UpdateBalance(ctx, wallet.ID, wallet.Balance.Add(credited)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "credit wallet")
		}
		return writeLegs(ctx, repo, []leg{
			{wallet: wallet.ID, amount: credited, txType: enums.TransactionTypeTopUp},
		})
	})
}

func (s *service) Balance(ctx context.Context, accountID uuid.UUID) (*models.Wallet, error) {
	wallet, err := s.repo.FindWalletByAccount(ctx, accountID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wallet")
	}
	return wallet, nil
}

func (s *service) Transactions(ctx context.Context, accountID uuid.UUID, params pagination.Params) ([]models.PaymentTransaction, string, error) {
	wallet, err := s.Balance(ctx, accountID)
	if err != nil {
		return nil, "", err
	}
	rows, next, err := s.repo.ListWalletTransactions(ctx, wallet.ID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wallet transactions")
	}
	return rows, next, nil
}

type leg struct {
	wallet  uuid.UUID
	amount  decimal.Decimal
	txType  enums.TransactionType
	booking *uuid.UUID
	order   *uuid.UUID
}

// writeLegs records one Success payment transaction per leg, each joined to
// the wallet it moved money on.
func writeLegs(ctx context.Context, repo Repository, legs []leg) error {
	for _, l := range legs {
		transaction := &models.PaymentTransaction{
			Amount:    l.amount,
			Type:      l.txType,
			Status:    enums.TransactionStatusSuccess,
			BookingID: l.booking,
			OrderID:   l.order,
		}
		if err := repo.CreatePaymentTransaction(ctx, transaction); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payment transaction")
		}
		wt := &models.WalletTransaction{WalletID: l.wallet, PaymentTransactionID: transaction.ID}
		if err := repo.CreateWalletTransaction(ctx, wt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record wallet transaction")
		}
	}
	return nil
}

// lockOrder returns the account IDs in the one global order every ledger
// operation acquires wallet row locks in: ascending by ID bytes. Two
// operations touching overlapping wallets therefore always contend on the
// lowest shared wallet first instead of deadlocking.
func lockOrder(accounts map[uuid.UUID]string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(accounts))
	for id := range accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// lockWallets acquires the wallet row of every listed account, keyed by
// account ID, with the role string used in not-found errors.
func lockWallets(ctx context.Context, repo Repository, accounts map[uuid.UUID]string) (map[uuid.UUID]*models.Wallet, error) {
	wallets := make(map[uuid.UUID]*models.Wallet, len(accounts))
	for _, accountID := range lockOrder(accounts) {
		wallet, err := lockWallet(ctx, repo, accountID, accounts[accountID])
		if err != nil {
			return nil, err
		}
		wallets[accountID] = wallet
	}
	return wallets, nil
}

func lockWallet(ctx context.Context, repo Repository, accountID uuid.UUID, role string) (*models.Wallet, error) {
	wallet, err := repo.FindWalletByAccount(ctx, accountID, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, role+" wallet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load "+role+" wallet")
	}
	return wallet, nil
}

func insufficientFunds(balance, required decimal.Decimal) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "insufficient wallet balance").
		WithDetails(map[string]string{
			"balance":  balance.String(),
			"required": required.String(),
		})
}
