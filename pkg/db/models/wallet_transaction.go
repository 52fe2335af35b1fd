package models

import (
	"time"

	"github.com/google/uuid"
)

// WalletTransaction joins a payment transaction leg to the wallet it touched;
// together they form the append-only audit trail per wallet.
type WalletTransaction struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletID             uuid.UUID `gorm:"column:wallet_id;type:uuid;not null;index"`
	PaymentTransactionID uuid.UUID `gorm:"column:payment_transaction_id;type:uuid;not null;index"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
}
