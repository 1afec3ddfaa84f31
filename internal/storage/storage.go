package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minerdrop/minerdrop/internal/domain/accounts"
	"github.com/minerdrop/minerdrop/internal/domain/holdings"
	"github.com/minerdrop/minerdrop/internal/domain/referrals"
	"github.com/minerdrop/minerdrop/internal/domain/withdrawals"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrBalanceNotEnough = errors.New("balance not enough")
	ErrWalletInUse      = errors.New("wallet address already in use")
	ErrReferralNotFound = errors.New("referral record not found")
)

// BonusMark is the per-user bonus-tracker record. A zero LastClaimAt means the
// daily bonus was never claimed.
type BonusMark struct {
	LastClaimAt    time.Time
	WelcomeClaimed bool
}

// Feed is the seasonal update feed shown by the bot and appended to by the
// feed daemon and the operator API.
type Feed struct {
	CountdownEndAt time.Time
	Messages       []string
}

type BalanceStorage interface {
	// GetBalance returns zero for unknown users.
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	CreditBalance(ctx context.Context, userID string, amount decimal.Decimal) error
	// DebitBalance fails with ErrBalanceNotEnough when amount exceeds the
	// current balance; an exact-balance debit succeeds.
	DebitBalance(ctx context.Context, userID string, amount decimal.Decimal) error
	CountBalances(ctx context.Context) (int, error)
	TotalBalance(ctx context.Context) (decimal.Decimal, error)
}

type BonusStorage interface {
	// GetBonusMark returns a zero-valued mark for unknown users.
	GetBonusMark(ctx context.Context, userID string) (*BonusMark, error)
	SaveBonusMark(ctx context.Context, userID string, mark *BonusMark) error
}

type ReferralStorage interface {
	GetReferralRecord(ctx context.Context, referrerID string) (*referrals.Record, error)
	SaveReferralRecord(ctx context.Context, rec *referrals.Record) error
	// IsReferred reports whether userID appears as a referred user anywhere
	// in the graph.
	IsReferred(ctx context.Context, userID string) (bool, error)
}

type AccountStorage interface {
	GetAccount(ctx context.Context, userID string) (*accounts.Account, error)
	// SaveAccount fails with ErrWalletInUse when the account's wallet address
	// is already recorded for a different account.
	SaveAccount(ctx context.Context, acc *accounts.Account) error
}

type HoldingStorage interface {
	GetHoldings(ctx context.Context, userID string) ([]*holdings.Holding, error)
	SaveHoldings(ctx context.Context, userID string, hs []*holdings.Holding) error
}

type WithdrawalStorage interface {
	CreateWithdrawal(ctx context.Context, w *withdrawals.Withdrawal) error
	// GetWithdrawals returns all withdrawal records, newest first.
	GetWithdrawals(ctx context.Context) ([]*withdrawals.Withdrawal, error)
}

// SubscriberStorage tracks users whose first /start was already reported to
// the operator. The same set doubles as the broadcast subscriber list.
type SubscriberStorage interface {
	IsSubscriber(ctx context.Context, userID string) (bool, error)
	AddSubscriber(ctx context.Context, userID string) error
	ListSubscribers(ctx context.Context) ([]string, error)
}

type FeedStorage interface {
	// GetFeed initializes and persists a fresh feed when none exists yet.
	GetFeed(ctx context.Context) (*Feed, error)
	SaveFeed(ctx context.Context, feed *Feed) error
}

type Storage interface {
	BalanceStorage
	BonusStorage
	ReferralStorage
	AccountStorage
	HoldingStorage
	WithdrawalStorage
	SubscriberStorage
	FeedStorage
	Close() error
	Ping(ctx context.Context) error
}

func NewStorage(store Storage) Storage {
	return store
}
