package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minerdrop/minerdrop/internal/domain/accounts"
	"github.com/minerdrop/minerdrop/internal/domain/holdings"
	"github.com/minerdrop/minerdrop/internal/domain/referrals"
	"github.com/minerdrop/minerdrop/internal/domain/withdrawals"
	"github.com/minerdrop/minerdrop/internal/storage"
)

var _ storage.Storage = (*Storage)(nil)

const initialCountdown = 30 * 24 * time.Hour

type Storage struct {
	mu          sync.Mutex
	balances    map[string]decimal.Decimal
	bonusMarks  map[string]storage.BonusMark
	referrals   map[string]*referrals.Record
	accounts    map[string]*accounts.Account
	holdings    map[string][]*holdings.Holding
	withdrawals []*withdrawals.Withdrawal
	subscribers map[string]struct{}
	feed        *storage.Feed
}

func NewStorage() *Storage {
	return &Storage{
		balances:    make(map[string]decimal.Decimal),
		bonusMarks:  make(map[string]storage.BonusMark),
		referrals:   make(map[string]*referrals.Record),
		accounts:    make(map[string]*accounts.Account),
		holdings:    make(map[string][]*holdings.Holding),
		subscribers: make(map[string]struct{}),
	}
}

func (s *Storage) Close() error {
	return nil
}

func (s *Storage) Ping(_ context.Context) error {
	return nil
}

func (s *Storage) GetBalance(_ context.Context, userID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.balances[userID], nil
}

func (s *Storage) CreditBalance(_ context.Context, userID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[userID] = s.balances[userID].Add(amount)

	return nil
}

func (s *Storage) DebitBalance(_ context.Context, userID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balances[userID]
	if balance.LessThan(amount) {
		return storage.ErrBalanceNotEnough
	}

	s.balances[userID] = balance.Sub(amount)

	return nil
}

func (s *Storage) CountBalances(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.balances), nil
}

func (s *Storage) TotalBalance(_ context.Context) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, balance := range s.balances {
		total = total.Add(balance)
	}

	return total, nil
}

func (s *Storage) GetBonusMark(_ context.Context, userID string) (*storage.BonusMark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mark := s.bonusMarks[userID]

	return &mark, nil
}

func (s *Storage) SaveBonusMark(_ context.Context, userID string, mark *storage.BonusMark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bonusMarks[userID] = *mark

	return nil
}

func (s *Storage) GetReferralRecord(_ context.Context, referrerID string) (*referrals.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.referrals[referrerID]
	if !ok {
		return nil, storage.ErrReferralNotFound
	}

	// Callers get a copy; mutations reach the store only through
	// SaveReferralRecord.
	cp, err := referrals.RestoreRecord(rec.ReferrerID(), rec.DisplayName(), rec.ReferredIDs())
	if err != nil {
		return nil, fmt.Errorf("referrals.RestoreRecord: %w", err)
	}

	return cp, nil
}

func (s *Storage) SaveReferralRecord(_ context.Context, rec *referrals.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp, err := referrals.RestoreRecord(rec.ReferrerID(), rec.DisplayName(), rec.ReferredIDs())
	if err != nil {
		return fmt.Errorf("referrals.RestoreRecord: %w", err)
	}

	s.referrals[rec.ReferrerID()] = cp

	return nil
}

func (s *Storage) IsReferred(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.referrals {
		if rec.HasReferred(userID) {
			return true, nil
		}
	}

	return false, nil
}

func (s *Storage) GetAccount(_ context.Context, userID string) (*accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return nil, storage.ErrAccountNotFound
	}

	// Callers get a copy; a mutated account lands in the store only when
	// SaveAccount accepts it, so a rejected wallet never sticks.
	cp := *acc

	return &cp, nil
}

func (s *Storage) SaveAccount(_ context.Context, acc *accounts.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acc.HasWallet() {
		for id, other := range s.accounts {
			if id != acc.ID() && other.Wallet() == acc.Wallet() {
				return storage.ErrWalletInUse
			}
		}
	}

	cp := *acc
	s.accounts[acc.ID()] = &cp

	return nil
}

func (s *Storage) GetHoldings(_ context.Context, userID string) ([]*holdings.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hs := make([]*holdings.Holding, 0, len(s.holdings[userID]))
	for _, h := range s.holdings[userID] {
		cp := *h
		hs = append(hs, &cp)
	}

	return hs, nil
}

func (s *Storage) SaveHoldings(_ context.Context, userID string, hs []*holdings.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make([]*holdings.Holding, 0, len(hs))
	for _, h := range hs {
		cp := *h
		saved = append(saved, &cp)
	}

	s.holdings[userID] = saved

	return nil
}

func (s *Storage) CreateWithdrawal(_ context.Context, w *withdrawals.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.withdrawals = append(s.withdrawals, w)

	return nil
}

func (s *Storage) GetWithdrawals(_ context.Context) ([]*withdrawals.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := make([]*withdrawals.Withdrawal, len(s.withdrawals))
	copy(ws, s.withdrawals)

	sort.Slice(ws, func(i, j int) bool {
		return ws[i].ProcessedAt().After(ws[j].ProcessedAt())
	})

	return ws, nil
}

func (s *Storage) IsSubscriber(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.subscribers[userID]

	return ok, nil
}

func (s *Storage) AddSubscriber(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers[userID] = struct{}{}

	return nil
}

func (s *Storage) ListSubscribers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids, nil
}

func (s *Storage) GetFeed(_ context.Context) (*storage.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.feed == nil {
		s.feed = &storage.Feed{
			CountdownEndAt: time.Now().Add(initialCountdown),
		}
	}

	feed := *s.feed
	feed.Messages = append([]string(nil), s.feed.Messages...)

	return &feed, nil
}

func (s *Storage) SaveFeed(_ context.Context, feed *storage.Feed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *feed
	saved.Messages = append([]string(nil), feed.Messages...)
	s.feed = &saved

	return nil
}
