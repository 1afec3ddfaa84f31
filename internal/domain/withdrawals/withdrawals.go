//nolint:wrapcheck
package withdrawals

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minerdrop/minerdrop/internal/domain/accounts"
)

var ErrAmountNotPositive = errors.New("withdrawal amount must be positive")

// Withdrawal is a confirmed payout request. Settlement is manual; this record
// is the bookkeeping trail the operator works from.
type Withdrawal struct {
	id          string
	userID      string
	address     string
	amount      decimal.Decimal
	processedAt time.Time
}

func NewWithdrawal(userID, address string, amount decimal.Decimal, processedAt time.Time) (*Withdrawal, error) {
	if err := accounts.ValidateAccountID(userID); err != nil {
		return nil, err
	}

	if err := accounts.ValidateWallet(address); err != nil {
		return nil, err
	}

	if !amount.IsPositive() {
		return nil, ErrAmountNotPositive
	}

	return &Withdrawal{
		id:          uuid.NewString(),
		userID:      userID,
		address:     address,
		amount:      amount,
		processedAt: processedAt,
	}, nil
}

// RestoreWithdrawal rebuilds a withdrawal from a persisted record.
func RestoreWithdrawal(id, userID, address string, amount decimal.Decimal, processedAt time.Time) (*Withdrawal, error) {
	w, err := NewWithdrawal(userID, address, amount, processedAt)
	if err != nil {
		return nil, err
	}

	w.id = id

	return w, nil
}

func (w *Withdrawal) ID() string {
	return w.id
}

func (w *Withdrawal) UserID() string {
	return w.userID
}

func (w *Withdrawal) Address() string {
	return w.address
}

func (w *Withdrawal) Amount() decimal.Decimal {
	return w.amount
}

func (w *Withdrawal) ProcessedAt() time.Time {
	return w.processedAt
}
