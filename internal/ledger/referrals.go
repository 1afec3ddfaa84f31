package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/minerdrop/minerdrop/internal/domain/referrals"
	"github.com/minerdrop/minerdrop/internal/storage"
)

// RegisterReferral attributes userID to referrerID and credits the referral
// bonus once. The first referrer wins: a user already present anywhere in the
// graph cannot be re-attributed. The referrer's display name is resolved and
// cached on first use.
func (s *Service) RegisterReferral(ctx context.Context, referrerID, userID string) error {
	if referrerID == userID {
		return ErrSelfReferral
	}

	referred, err := s.store.IsReferred(ctx, userID)
	if err != nil {
		return fmt.Errorf("storage.IsReferred: %w", err)
	}

	if referred {
		return ErrAlreadyReferred
	}

	rec, err := s.store.GetReferralRecord(ctx, referrerID)
	if errors.Is(err, storage.ErrReferralNotFound) {
		name, resolveErr := s.resolver.ResolveDisplayName(ctx, referrerID)
		if resolveErr != nil {
			s.log.Error("resolve referrer display name",
				slog.String("referrer_id", referrerID), slog.Any("error", resolveErr))
		}

		rec, err = referrals.NewRecord(referrerID, name)
		if err != nil {
			return fmt.Errorf("referrals.NewRecord: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("storage.GetReferralRecord: %w", err)
	}

	rec.Add(userID)

	if err := s.store.SaveReferralRecord(ctx, rec); err != nil {
		return fmt.Errorf("storage.SaveReferralRecord: %w", err)
	}

	if err := s.store.CreditBalance(ctx, referrerID, s.referralBonus); err != nil {
		return fmt.Errorf("storage.CreditBalance: %w", err)
	}

	if err := s.notifier.Notify(referrerID, fmt.Sprintf(
		"You have a new referral! +%s USDT has been credited to your balance.",
		s.referralBonus.String(),
	)); err != nil {
		s.log.Error("notify referrer", slog.String("referrer_id", referrerID), slog.Any("error", err))
	}

	return nil
}

// ReferralStats returns the number of users attributed to the referrer along
// with their ids, in attribution order.
func (s *Service) ReferralStats(ctx context.Context, referrerID string) (int, []string, error) {
	rec, err := s.store.GetReferralRecord(ctx, referrerID)
	if errors.Is(err, storage.ErrReferralNotFound) {
		return 0, nil, nil
	} else if err != nil {
		return 0, nil, fmt.Errorf("storage.GetReferralRecord: %w", err)
	}

	return rec.Count(), rec.ReferredIDs(), nil
}
