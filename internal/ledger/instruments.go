package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/minerdrop/minerdrop/internal/domain/catalog"
	"github.com/minerdrop/minerdrop/internal/domain/holdings"
	"github.com/minerdrop/minerdrop/internal/storage"
)

// PurchaseResult reports a completed miner purchase.
type PurchaseResult struct {
	Instrument catalog.Instrument
	NewBalance decimal.Decimal
}

// Purchase debits the instrument price and appends a new holding with the
// yield rate snapshotted from the catalog. Each purchase is an independent
// holding; buying the same instrument twice yields two accrual windows.
func (s *Service) Purchase(ctx context.Context, userID, instrumentName string) (*PurchaseResult, error) {
	inst, err := s.catalog.Lookup(instrumentName)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if err := s.store.DebitBalance(ctx, userID, inst.Price()); err != nil {
		if errors.Is(err, storage.ErrBalanceNotEnough) {
			return nil, ErrInsufficientFunds
		}

		return nil, fmt.Errorf("storage.DebitBalance: %w", err)
	}

	hs, err := s.store.GetHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetHoldings: %w", err)
	}

	hs = append(hs, holdings.NewHolding(inst, s.now()))

	if err := s.store.SaveHoldings(ctx, userID, hs); err != nil {
		return nil, fmt.Errorf("storage.SaveHoldings: %w", err)
	}

	balance, err := s.store.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetBalance: %w", err)
	}

	return &PurchaseResult{
		Instrument: inst,
		NewBalance: balance,
	}, nil
}

// HoldingEarning is one holding's contribution to a collection run.
type HoldingEarning struct {
	InstrumentName string
	YieldPerSecond decimal.Decimal
	Earnings       decimal.Decimal
	Expired        bool
}

// CollectResult reports a completed collection run.
type CollectResult struct {
	Items []HoldingEarning
	Total decimal.Decimal
}

// Collect accrues every holding up to now and credits the summed earnings in
// a single credit. Unexpired holdings have their accrual window advanced to
// now, making an immediate repeat collection worth zero; expired holdings
// contribute nothing and stay inert. ErrNoHoldings is returned when the user
// has never purchased anything.
func (s *Service) Collect(ctx context.Context, userID string) (*CollectResult, error) {
	hs, err := s.store.GetHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetHoldings: %w", err)
	}

	if len(hs) == 0 {
		return nil, ErrNoHoldings
	}

	now := s.now()

	result := &CollectResult{
		Items: make([]HoldingEarning, 0, len(hs)),
		Total: decimal.Zero,
	}

	for _, h := range hs {
		earnings := h.Accrue(now)

		result.Items = append(result.Items, HoldingEarning{
			InstrumentName: h.InstrumentName(),
			YieldPerSecond: h.YieldPerSecond(),
			Earnings:       earnings,
			Expired:        h.Expired(now),
		})

		result.Total = result.Total.Add(earnings)
	}

	if result.Total.IsPositive() {
		if err := s.store.CreditBalance(ctx, userID, result.Total); err != nil {
			return nil, fmt.Errorf("storage.CreditBalance: %w", err)
		}
	}

	if err := s.store.SaveHoldings(ctx, userID, hs); err != nil {
		return nil, fmt.Errorf("storage.SaveHoldings: %w", err)
	}

	return result, nil
}

// Holdings returns the user's holdings without accruing.
func (s *Service) Holdings(ctx context.Context, userID string) ([]*holdings.Holding, error) {
	hs, err := s.store.GetHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetHoldings: %w", err)
	}

	return hs, nil
}
