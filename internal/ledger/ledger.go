// Package ledger implements the reward bookkeeping core: balances, bonuses,
// referrals, miner holdings with on-demand accrual, wallet directory and the
// staged withdrawal workflow.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minerdrop/minerdrop/internal/domain/accounts"
	"github.com/minerdrop/minerdrop/internal/domain/catalog"
	"github.com/minerdrop/minerdrop/internal/storage"
)

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrBonusNotReady       = errors.New("bonus is not ready yet")
	ErrWelcomeClaimed      = errors.New("welcome bonus already claimed")
	ErrSelfReferral        = errors.New("self-referral is not allowed")
	ErrAlreadyReferred     = errors.New("user is already referred")
	ErrWalletNotSet        = errors.New("wallet address is not set")
	ErrNoHoldings          = errors.New("no active holdings")
	ErrNoPendingWithdrawal = errors.New("no pending withdrawal")
)

const (
	defaultBonusAmount   = "0.0001"
	defaultWelcomeBonus  = "0.0005"
	defaultReferralBonus = "0.0002"
	defaultBonusInterval = 24 * time.Hour
)

// IdentityResolver looks up a user's display name by id. The bot implements it
// on top of the Telegram API.
type IdentityResolver interface {
	ResolveDisplayName(ctx context.Context, userID string) (string, error)
}

// Notifier delivers out-of-band messages. Delivery is fire-and-forget: the
// ledger logs failures and never rolls back a committed credit or debit
// because a notification did not go out.
type Notifier interface {
	Notify(userID, text string) error
	NotifyOperator(text string) error
}

type noopResolver struct{}

func (noopResolver) ResolveDisplayName(_ context.Context, _ string) (string, error) {
	return "", nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(_, _ string) error {
	return nil
}

func (noopNotifier) NotifyOperator(_ string) error {
	return nil
}

// Service is the ledger core. All mutating operations persist through the
// storage before reporting success; the pending-withdrawal stage is the one
// deliberately volatile piece of state.
type Service struct {
	store         storage.Storage
	log           *slog.Logger
	notifier      Notifier
	resolver      IdentityResolver
	now           func() time.Time
	catalog       *catalog.Catalog
	bonusAmount   decimal.Decimal
	welcomeBonus  decimal.Decimal
	referralBonus decimal.Decimal
	bonusInterval time.Duration

	pendingMu sync.Mutex
	pending   map[string]decimal.Decimal
}

type Option func(s *Service)

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithIdentityResolver(r IdentityResolver) Option {
	return func(s *Service) {
		s.resolver = r
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

func WithBonusAmount(amount decimal.Decimal) Option {
	return func(s *Service) {
		s.bonusAmount = amount
	}
}

func WithWelcomeBonus(amount decimal.Decimal) Option {
	return func(s *Service) {
		s.welcomeBonus = amount
	}
}

func WithReferralBonus(amount decimal.Decimal) Option {
	return func(s *Service) {
		s.referralBonus = amount
	}
}

func WithBonusInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.bonusInterval = interval
	}
}

func New(store storage.Storage, opts ...Option) *Service {
	svc := &Service{
		store:         store,
		log:           slog.Default(),
		notifier:      noopNotifier{},
		resolver:      noopResolver{},
		now:           time.Now,
		catalog:       catalog.Default(),
		bonusAmount:   decimal.RequireFromString(defaultBonusAmount),
		welcomeBonus:  decimal.RequireFromString(defaultWelcomeBonus),
		referralBonus: decimal.RequireFromString(defaultReferralBonus),
		bonusInterval: defaultBonusInterval,
		pending:       make(map[string]decimal.Decimal),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Balance returns the user's current balance at full internal precision.
// Unknown users read as zero.
func (s *Service) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	balance, err := s.store.GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("storage.GetBalance: %w", err)
	}

	return balance, nil
}

// RegisterAccount records the user in the wallet directory and, on the very
// first sighting, marks them as a subscriber and notifies the operator. It
// reports whether this was the first sighting.
func (s *Service) RegisterAccount(ctx context.Context, userID, displayName string) (bool, error) {
	acc, err := s.store.GetAccount(ctx, userID)
	switch {
	case errors.Is(err, storage.ErrAccountNotFound):
		acc, err = accounts.NewAccount(userID, displayName)
		if err != nil {
			return false, fmt.Errorf("accounts.NewAccount: %w", err)
		}
	case err != nil:
		return false, fmt.Errorf("storage.GetAccount: %w", err)
	default:
		acc.SetDisplayName(displayName)
	}

	if err := s.store.SaveAccount(ctx, acc); err != nil {
		return false, fmt.Errorf("storage.SaveAccount: %w", err)
	}

	seen, err := s.store.IsSubscriber(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("storage.IsSubscriber: %w", err)
	}

	if seen {
		return false, nil
	}

	if err := s.store.AddSubscriber(ctx, userID); err != nil {
		return false, fmt.Errorf("storage.AddSubscriber: %w", err)
	}

	if err := s.notifier.NotifyOperator(
		fmt.Sprintf("New user: %s (id %s)", displayName, userID),
	); err != nil {
		s.log.Error("notify operator about new user", slog.Any("error", err))
	}

	return true, nil
}

// Stats reports aggregate figures for the operator API.
type Stats struct {
	Accounts     int
	TotalBalance decimal.Decimal
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	count, err := s.store.CountBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.CountBalances: %w", err)
	}

	total, err := s.store.TotalBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.TotalBalance: %w", err)
	}

	return &Stats{
		Accounts:     count,
		TotalBalance: total,
	}, nil
}
