package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BonusClaim is the outcome of a daily bonus claim attempt. On success Amount
// carries the credited sum; on ErrBonusNotReady NextClaimIn carries the time
// remaining until the next claim.
type BonusClaim struct {
	Amount      decimal.Decimal
	NextClaimIn time.Duration
}

// ClaimBonus credits the daily bonus if at least the configured interval has
// passed since the previous claim. An early claim leaves the ledger untouched
// and reports the remaining wait through ErrBonusNotReady.
func (s *Service) ClaimBonus(ctx context.Context, userID string) (*BonusClaim, error) {
	mark, err := s.store.GetBonusMark(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetBonusMark: %w", err)
	}

	now := s.now()

	if !mark.LastClaimAt.IsZero() {
		elapsed := now.Sub(mark.LastClaimAt)
		if elapsed < s.bonusInterval {
			return &BonusClaim{NextClaimIn: s.bonusInterval - elapsed}, ErrBonusNotReady
		}
	}

	if err := s.store.CreditBalance(ctx, userID, s.bonusAmount); err != nil {
		return nil, fmt.Errorf("storage.CreditBalance: %w", err)
	}

	mark.LastClaimAt = now

	if err := s.store.SaveBonusMark(ctx, userID, mark); err != nil {
		return nil, fmt.Errorf("storage.SaveBonusMark: %w", err)
	}

	return &BonusClaim{Amount: s.bonusAmount}, nil
}

// ClaimWelcomeBonus credits the one-time welcome bonus. The caller is expected
// to have verified channel membership first; the ledger only enforces the
// once-per-user rule.
func (s *Service) ClaimWelcomeBonus(ctx context.Context, userID string) (decimal.Decimal, error) {
	mark, err := s.store.GetBonusMark(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("storage.GetBonusMark: %w", err)
	}

	if mark.WelcomeClaimed {
		return decimal.Zero, ErrWelcomeClaimed
	}

	if err := s.store.CreditBalance(ctx, userID, s.welcomeBonus); err != nil {
		return decimal.Zero, fmt.Errorf("storage.CreditBalance: %w", err)
	}

	mark.WelcomeClaimed = true

	if err := s.store.SaveBonusMark(ctx, userID, mark); err != nil {
		return decimal.Zero, fmt.Errorf("storage.SaveBonusMark: %w", err)
	}

	return s.welcomeBonus, nil
}
