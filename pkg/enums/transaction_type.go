package enums

import "fmt"

// TransactionType labels one leg of a money movement.
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeRevenue  TransactionType = "revenue"
	TransactionTypeFinalPay TransactionType = "final_pay"
	TransactionTypeRefund   TransactionType = "refund"
	TransactionTypeTopUp    TransactionType = "top_up"
	TransactionTypeOrderPay TransactionType = "order_pay"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeDeposit,
	TransactionTypeRevenue,
	TransactionTypeFinalPay,
	TransactionTypeRefund,
	TransactionTypeTopUp,
	TransactionTypeOrderPay,
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionType.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionType converts raw input into a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
