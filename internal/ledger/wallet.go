package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/minerdrop/minerdrop/internal/domain/accounts"
	"github.com/minerdrop/minerdrop/internal/storage"
)

// SetWallet records or replaces the user's payout address. The address must
// pass the length check and must not belong to another account; re-saving
// one's own current address is allowed.
func (s *Service) SetWallet(ctx context.Context, userID, address string) error {
	acc, err := s.store.GetAccount(ctx, userID)
	if errors.Is(err, storage.ErrAccountNotFound) {
		acc, err = accounts.NewAccount(userID, "")
		if err != nil {
			return fmt.Errorf("accounts.NewAccount: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("storage.GetAccount: %w", err)
	}

	if err := acc.SetWallet(address); err != nil {
		return err //nolint:wrapcheck
	}

	if err := s.store.SaveAccount(ctx, acc); err != nil {
		if errors.Is(err, storage.ErrWalletInUse) {
			return storage.ErrWalletInUse
		}

		return fmt.Errorf("storage.SaveAccount: %w", err)
	}

	return nil
}

// Wallet returns the user's recorded payout address or ErrWalletNotSet.
func (s *Service) Wallet(ctx context.Context, userID string) (string, error) {
	acc, err := s.store.GetAccount(ctx, userID)
	if errors.Is(err, storage.ErrAccountNotFound) {
		return "", ErrWalletNotSet
	} else if err != nil {
		return "", fmt.Errorf("storage.GetAccount: %w", err)
	}

	if !acc.HasWallet() {
		return "", ErrWalletNotSet
	}

	return acc.Wallet(), nil
}
