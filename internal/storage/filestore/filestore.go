// Package filestore persists every record kind as one JSON file under a data
// directory, loaded fully at startup and rewritten in full after every
// mutation. That write-through model is safe here because a single process
// owns the data; multi-process deployments need the Postgres storage instead.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
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

const (
	balancesFile    = "balances.json"
	bonusFile       = "bonus.json"
	referralsFile   = "referrals.json"
	walletsFile     = "wallets.json"
	holdingsFile    = "holdings.json"
	subscribersFile = "subscribers.json"
	withdrawalsFile = "withdrawals.json"
	feedFile        = "feed.json"

	initialCountdown = 30 * 24 * time.Hour
)

type bonusRecord struct {
	LastClaimAt    int64 `json:"last_claim_at"`
	WelcomeClaimed bool  `json:"welcome_claimed"`
}

type referralRecord struct {
	Count       int      `json:"count"`
	ReferredIDs []string `json:"referred_users"`
	DisplayName string   `json:"username"`
}

type walletRecord struct {
	DisplayName string `json:"username"`
	Wallet      string `json:"wallet,omitempty"`
}

type holdingRecord struct {
	Name           string          `json:"name"`
	PurchaseDate   time.Time       `json:"purchase_date"`
	ExpirationDate time.Time       `json:"expiration_date"`
	PerSecond      decimal.Decimal `json:"produced_per_second"`
}

type withdrawalRecord struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Address     string          `json:"address"`
	Amount      decimal.Decimal `json:"amount"`
	ProcessedAt time.Time       `json:"processed_at"`
}

type feedRecord struct {
	CountdownEndAt time.Time `json:"countdown_end_time"`
	Messages       []string  `json:"messages"`
}

type Storage struct {
	mu  sync.Mutex
	dir string

	balances    map[string]decimal.Decimal
	bonusMarks  map[string]bonusRecord
	referrals   map[string]referralRecord
	wallets     map[string]walletRecord
	holdings    map[string][]holdingRecord
	subscribers []string
	withdrawals []withdrawalRecord
	feed        *feedRecord
}

// OpenStorage loads every record file under dir, creating the directory when
// missing. Malformed records fail the open rather than defaulting silently.
func OpenStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	s := &Storage{
		dir:        dir,
		balances:   make(map[string]decimal.Decimal),
		bonusMarks: make(map[string]bonusRecord),
		referrals:  make(map[string]referralRecord),
		wallets:    make(map[string]walletRecord),
		holdings:   make(map[string][]holdingRecord),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) load() error {
	if err := loadFile(filepath.Join(s.dir, balancesFile), &s.balances); err != nil {
		return err
	}

	if err := loadFile(filepath.Join(s.dir, bonusFile), &s.bonusMarks); err != nil {
		return err
	}

	if err := loadFile(filepath.Join(s.dir, referralsFile), &s.referrals); err != nil {
		return err
	}

	if err := loadFile(filepath.Join(s.dir, walletsFile), &s.wallets); err != nil {
		return err
	}

	if err := loadFile(filepath.Join(s.dir, holdingsFile), &s.holdings); err != nil {
		return err
	}

	if err := loadFile(filepath.Join(s.dir, subscribersFile), &s.subscribers); err != nil {
		return err
	}

	if err := loadFile(filepath.Join(s.dir, withdrawalsFile), &s.withdrawals); err != nil {
		return err
	}

	feedPath := filepath.Join(s.dir, feedFile)
	if _, err := os.Stat(feedPath); err == nil {
		var feed feedRecord
		if err := loadFile(feedPath, &feed); err != nil {
			return err
		}

		s.feed = &feed
	}

	return nil
}

// loadFile decodes path into v; a missing file leaves v untouched.
func loadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("os.ReadFile: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", filepath.Base(path), err)
	}

	return nil
}

// writeFile replaces the record file atomically: encode to a sibling tmp file,
// then rename over the target.
func (s *Storage) writeFile(name string, v any) error {
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("os.WriteFile: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	return nil
}

func (s *Storage) Close() error {
	return nil
}

func (s *Storage) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("os.Stat: %w", err)
	}

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

	return s.writeFile(balancesFile, s.balances)
}

func (s *Storage) DebitBalance(_ context.Context, userID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balances[userID]
	if balance.LessThan(amount) {
		return storage.ErrBalanceNotEnough
	}

	s.balances[userID] = balance.Sub(amount)

	return s.writeFile(balancesFile, s.balances)
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

	rec := s.bonusMarks[userID]

	mark := &storage.BonusMark{WelcomeClaimed: rec.WelcomeClaimed}
	if rec.LastClaimAt != 0 {
		mark.LastClaimAt = time.Unix(rec.LastClaimAt, 0)
	}

	return mark, nil
}

func (s *Storage) SaveBonusMark(_ context.Context, userID string, mark *storage.BonusMark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := bonusRecord{WelcomeClaimed: mark.WelcomeClaimed}
	if !mark.LastClaimAt.IsZero() {
		rec.LastClaimAt = mark.LastClaimAt.Unix()
	}

	s.bonusMarks[userID] = rec

	return s.writeFile(bonusFile, s.bonusMarks)
}

func (s *Storage) GetReferralRecord(_ context.Context, referrerID string) (*referrals.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.referrals[referrerID]
	if !ok {
		return nil, storage.ErrReferralNotFound
	}

	restored, err := referrals.RestoreRecord(referrerID, rec.DisplayName, rec.ReferredIDs)
	if err != nil {
		return nil, fmt.Errorf("referrals.RestoreRecord: %w", err)
	}

	return restored, nil
}

func (s *Storage) SaveReferralRecord(_ context.Context, rec *referrals.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.referrals[rec.ReferrerID()] = referralRecord{
		Count:       rec.Count(),
		ReferredIDs: rec.ReferredIDs(),
		DisplayName: rec.DisplayName(),
	}

	return s.writeFile(referralsFile, s.referrals)
}

func (s *Storage) IsReferred(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.referrals {
		for _, id := range rec.ReferredIDs {
			if id == userID {
				return true, nil
			}
		}
	}

	return false, nil
}

func (s *Storage) GetAccount(_ context.Context, userID string) (*accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.wallets[userID]
	if !ok {
		return nil, storage.ErrAccountNotFound
	}

	acc, err := accounts.RestoreAccount(userID, rec.DisplayName, rec.Wallet)
	if err != nil {
		return nil, fmt.Errorf("accounts.RestoreAccount: %w", err)
	}

	return acc, nil
}

func (s *Storage) SaveAccount(_ context.Context, acc *accounts.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acc.HasWallet() {
		for id, rec := range s.wallets {
			if id != acc.ID() && rec.Wallet == acc.Wallet() {
				return storage.ErrWalletInUse
			}
		}
	}

	s.wallets[acc.ID()] = walletRecord{
		DisplayName: acc.DisplayName(),
		Wallet:      acc.Wallet(),
	}

	return s.writeFile(walletsFile, s.wallets)
}

func (s *Storage) GetHoldings(_ context.Context, userID string) ([]*holdings.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.holdings[userID]

	hs := make([]*holdings.Holding, 0, len(recs))
	for _, rec := range recs {
		h, err := holdings.RestoreHolding(rec.Name, rec.PurchaseDate, rec.ExpirationDate, rec.PerSecond)
		if err != nil {
			return nil, fmt.Errorf("holdings.RestoreHolding: %w", err)
		}

		hs = append(hs, h)
	}

	return hs, nil
}

func (s *Storage) SaveHoldings(_ context.Context, userID string, hs []*holdings.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([]holdingRecord, 0, len(hs))
	for _, h := range hs {
		recs = append(recs, holdingRecord{
			Name:           h.InstrumentName(),
			PurchaseDate:   h.AcquiredAt(),
			ExpirationDate: h.ExpiresAt(),
			PerSecond:      h.YieldPerSecond(),
		})
	}

	s.holdings[userID] = recs

	return s.writeFile(holdingsFile, s.holdings)
}

func (s *Storage) CreateWithdrawal(_ context.Context, w *withdrawals.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.withdrawals = append(s.withdrawals, withdrawalRecord{
		ID:          w.ID(),
		UserID:      w.UserID(),
		Address:     w.Address(),
		Amount:      w.Amount(),
		ProcessedAt: w.ProcessedAt(),
	})

	return s.writeFile(withdrawalsFile, s.withdrawals)
}

func (s *Storage) GetWithdrawals(_ context.Context) ([]*withdrawals.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := make([]*withdrawals.Withdrawal, 0, len(s.withdrawals))
	for _, rec := range s.withdrawals {
		w, err := withdrawals.RestoreWithdrawal(rec.ID, rec.UserID, rec.Address, rec.Amount, rec.ProcessedAt)
		if err != nil {
			return nil, fmt.Errorf("withdrawals.RestoreWithdrawal: %w", err)
		}

		ws = append(ws, w)
	}

	sort.Slice(ws, func(i, j int) bool {
		return ws[i].ProcessedAt().After(ws[j].ProcessedAt())
	})

	return ws, nil
}

func (s *Storage) IsSubscriber(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.subscribers {
		if id == userID {
			return true, nil
		}
	}

	return false, nil
}

func (s *Storage) AddSubscriber(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.subscribers {
		if id == userID {
			return nil
		}
	}

	s.subscribers = append(s.subscribers, userID)

	return s.writeFile(subscribersFile, s.subscribers)
}

func (s *Storage) ListSubscribers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(s.subscribers))
	copy(ids, s.subscribers)

	return ids, nil
}

func (s *Storage) GetFeed(_ context.Context) (*storage.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.feed == nil {
		s.feed = &feedRecord{
			CountdownEndAt: time.Now().Add(initialCountdown),
		}

		if err := s.writeFile(feedFile, s.feed); err != nil {
			return nil, err
		}
	}

	return &storage.Feed{
		CountdownEndAt: s.feed.CountdownEndAt,
		Messages:       append([]string(nil), s.feed.Messages...),
	}, nil
}

func (s *Storage) SaveFeed(_ context.Context, feed *storage.Feed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feed = &feedRecord{
		CountdownEndAt: feed.CountdownEndAt,
		Messages:       append([]string(nil), feed.Messages...),
	}

	return s.writeFile(feedFile, s.feed)
}
