package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/minerdrop/minerdrop/internal/domain/withdrawals"
	"github.com/minerdrop/minerdrop/internal/storage"
)

// SelectWithdrawal stages a withdrawal for the given amount and returns the
// payout address it would go to. The stage is volatile: it survives only as
// long as the process, and a second selection overwrites the first. A wallet
// address must be on file before an amount can be staged.
func (s *Service) SelectWithdrawal(ctx context.Context, userID string, amount decimal.Decimal) (string, error) {
	if !amount.IsPositive() {
		return "", withdrawals.ErrAmountNotPositive
	}

	address, err := s.Wallet(ctx, userID)
	if err != nil {
		return "", err
	}

	s.pendingMu.Lock()
	s.pending[userID] = amount
	s.pendingMu.Unlock()

	return address, nil
}

// PendingWithdrawal returns the currently staged amount, if any.
func (s *Service) PendingWithdrawal(userID string) (decimal.Decimal, bool) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	amount, ok := s.pending[userID]

	return amount, ok
}

// ConfirmWithdrawal debits the full staged amount, appends a durable
// withdrawal record and notifies the operator. The stage is cleared on
// success and on ErrInsufficientFunds alike, so a failed confirmation starts
// over from amount selection.
func (s *Service) ConfirmWithdrawal(ctx context.Context, userID string) (*withdrawals.Withdrawal, error) {
	s.pendingMu.Lock()
	amount, ok := s.pending[userID]
	s.pendingMu.Unlock()

	if !ok {
		return nil, ErrNoPendingWithdrawal
	}

	address, err := s.Wallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DebitBalance(ctx, userID, amount); err != nil {
		if errors.Is(err, storage.ErrBalanceNotEnough) {
			s.clearPending(userID)

			return nil, ErrInsufficientFunds
		}

		return nil, fmt.Errorf("storage.DebitBalance: %w", err)
	}

	s.clearPending(userID)

	w, err := withdrawals.NewWithdrawal(userID, address, amount, s.now())
	if err != nil {
		return nil, fmt.Errorf("withdrawals.NewWithdrawal: %w", err)
	}

	// The debit is already committed; a history failure is logged, not
	// propagated as a workflow error.
	if err := s.store.CreateWithdrawal(ctx, w); err != nil {
		s.log.Error("record withdrawal history",
			slog.String("user_id", userID), slog.Any("error", err))
	}

	if err := s.notifier.NotifyOperator(fmt.Sprintf(
		"Withdrawal request: user %s, %s USDT to %s", userID, amount.String(), address,
	)); err != nil {
		s.log.Error("notify operator about withdrawal",
			slog.String("user_id", userID), slog.Any("error", err))
	}

	return w, nil
}

// CancelWithdrawal drops any staged amount. Cancelling with nothing staged is
// a no-op.
func (s *Service) CancelWithdrawal(userID string) {
	s.clearPending(userID)
}

func (s *Service) clearPending(userID string) {
	s.pendingMu.Lock()
	delete(s.pending, userID)
	s.pendingMu.Unlock()
}

// Withdrawals returns the durable withdrawal history, newest first.
func (s *Service) Withdrawals(ctx context.Context) ([]*withdrawals.Withdrawal, error) {
	ws, err := s.store.GetWithdrawals(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.GetWithdrawals: %w", err)
	}

	return ws, nil
}
