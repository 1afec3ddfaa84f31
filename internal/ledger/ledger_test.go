package ledger_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/minerdrop/minerdrop/internal/domain/accounts"
	"github.com/minerdrop/minerdrop/internal/domain/catalog"
	"github.com/minerdrop/minerdrop/internal/domain/withdrawals"
	"github.com/minerdrop/minerdrop/internal/ledger"
	"github.com/minerdrop/minerdrop/internal/storage"
	"github.com/minerdrop/minerdrop/internal/storage/inmemory"
)

type recordingNotifier struct {
	sent     map[string][]string
	operator []string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(map[string][]string)}
}

func (n *recordingNotifier) Notify(userID, text string) error {
	n.sent[userID] = append(n.sent[userID], text)
	return nil
}

func (n *recordingNotifier) NotifyOperator(text string) error {
	n.operator = append(n.operator, text)
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newService(t *testing.T, opts ...ledger.Option) (*ledger.Service, storage.Storage, *fakeClock) {
	t.Helper()

	store := inmemory.NewStorage()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}

	opts = append([]ledger.Option{ledger.WithClock(clock.Now)}, opts...)

	return ledger.New(store, opts...), store, clock
}

func TestClaimBonus(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newService(t)

	claim, err := svc.ClaimBonus(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "0.0001", claim.Amount.String())

	balance, err := store.GetBalance(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "0.0001", balance.String())

	// A second claim within 24 hours reports the remaining wait.
	clock.Advance(time.Hour)

	claim, err = svc.ClaimBonus(ctx, "1")
	require.ErrorIs(t, err, ledger.ErrBonusNotReady)
	require.Equal(t, 23*time.Hour, claim.NextClaimIn)

	balance, err = store.GetBalance(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "0.0001", balance.String())

	clock.Advance(23 * time.Hour)

	claim, err = svc.ClaimBonus(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "0.0001", claim.Amount.String())
}

func TestClaimWelcomeBonus(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)

	amount, err := svc.ClaimWelcomeBonus(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "0.0005", amount.String())

	_, err = svc.ClaimWelcomeBonus(ctx, "1")
	require.ErrorIs(t, err, ledger.ErrWelcomeClaimed)

	balance, err := store.GetBalance(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "0.0005", balance.String())

	// The welcome flag does not interfere with the daily bonus.
	_, err = svc.ClaimBonus(ctx, "1")
	require.NoError(t, err)
}

func TestRegisterReferral(t *testing.T) {
	ctx := context.Background()
	notifier := newRecordingNotifier()
	svc, store, _ := newService(t, ledger.WithNotifier(notifier))

	err := svc.RegisterReferral(ctx, "1", "1")
	require.ErrorIs(t, err, ledger.ErrSelfReferral)

	require.NoError(t, svc.RegisterReferral(ctx, "1", "2"))

	balance, err := store.GetBalance(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "0.0002", balance.String())

	count, ids, err := svc.ReferralStats(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, []string{"2"}, ids)

	require.Len(t, notifier.sent["1"], 1)
	require.Contains(t, notifier.sent["1"][0], "0.0002")

	// The first referrer wins: nobody can re-attribute an already referred user.
	err = svc.RegisterReferral(ctx, "3", "2")
	require.ErrorIs(t, err, ledger.ErrAlreadyReferred)

	err = svc.RegisterReferral(ctx, "1", "2")
	require.ErrorIs(t, err, ledger.ErrAlreadyReferred)

	balance, err = store.GetBalance(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "0.0002", balance.String())

	count, ids, err = svc.ReferralStats(ctx, "9")
	require.NoError(t, err)
	require.Zero(t, count)
	require.Empty(t, ids)
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)

	_, err := svc.Purchase(ctx, "1", "Solar Panel 99")
	require.ErrorIs(t, err, catalog.ErrInstrumentNotFound)

	_, err = svc.Purchase(ctx, "1", "Solar Panel 1")
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	// An exact-price balance is enough.
	require.NoError(t, store.CreditBalance(ctx, "1", decimal.RequireFromString("0.002")))

	result, err := svc.Purchase(ctx, "1", "Solar Panel 1")
	require.NoError(t, err)
	require.Equal(t, "Solar Panel 1", result.Instrument.Name())
	require.True(t, result.NewBalance.IsZero())

	hs, err := svc.Holdings(ctx, "1")
	require.NoError(t, err)
	require.Len(t, hs, 1)

	// Buying again creates an independent holding.
	require.NoError(t, store.CreditBalance(ctx, "1", decimal.RequireFromString("0.002")))

	_, err = svc.Purchase(ctx, "1", "Solar Panel 1")
	require.NoError(t, err)

	hs, err = svc.Holdings(ctx, "1")
	require.NoError(t, err)
	require.Len(t, hs, 2)
}

func TestCollect(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newService(t)

	_, err := svc.Collect(ctx, "1")
	require.ErrorIs(t, err, ledger.ErrNoHoldings)

	require.NoError(t, store.CreditBalance(ctx, "1", decimal.RequireFromString("0.002")))

	_, err = svc.Purchase(ctx, "1", "Solar Panel 1")
	require.NoError(t, err)

	clock.Advance(1000 * time.Second)

	result, err := svc.Collect(ctx, "1")
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, "0.00382", result.Total.String())
	require.False(t, result.Items[0].Expired)

	balance, err := store.GetBalance(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "0.00382", balance.String())

	// The accrual window was advanced, so an immediate repeat yields zero.
	result, err = svc.Collect(ctx, "1")
	require.NoError(t, err)
	require.True(t, result.Total.IsZero())

	// Past expiry the holding stays listed but contributes nothing.
	clock.Advance(30 * 24 * time.Hour)

	result, err = svc.Collect(ctx, "1")
	require.NoError(t, err)
	require.True(t, result.Total.IsZero())
	require.True(t, result.Items[0].Expired)

	balance, err = store.GetBalance(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "0.00382", balance.String())
}

func TestSetWallet(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Wallet(ctx, "1")
	require.ErrorIs(t, err, ledger.ErrWalletNotSet)

	err = svc.SetWallet(ctx, "1", "tooshort")
	require.ErrorIs(t, err, accounts.ErrWalletFormatInvalid)

	wallet := strings.Repeat("a", 34)
	require.NoError(t, svc.SetWallet(ctx, "1", wallet))

	got, err := svc.Wallet(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, wallet, got)

	err = svc.SetWallet(ctx, "2", wallet)
	require.ErrorIs(t, err, storage.ErrWalletInUse)

	// Replacing one's own address is allowed.
	require.NoError(t, svc.SetWallet(ctx, "1", strings.Repeat("b", 34)))
}

func TestSetWalletConflictLeavesAccountUntouched(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.RegisterAccount(ctx, "1", "alice")
	require.NoError(t, err)

	_, err = svc.RegisterAccount(ctx, "2", "bob")
	require.NoError(t, err)

	wallet := strings.Repeat("a", 34)
	require.NoError(t, svc.SetWallet(ctx, "1", wallet))

	err = svc.SetWallet(ctx, "2", wallet)
	require.ErrorIs(t, err, storage.ErrWalletInUse)

	// The rejected address must not stick to the second account.
	_, err = svc.Wallet(ctx, "2")
	require.ErrorIs(t, err, ledger.ErrWalletNotSet)

	got, err := svc.Wallet(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, wallet, got)
}

func TestWithdrawalWorkflow(t *testing.T) {
	ctx := context.Background()
	notifier := newRecordingNotifier()
	svc, store, _ := newService(t, ledger.WithNotifier(notifier))

	_, err := svc.SelectWithdrawal(ctx, "1", decimal.NewFromInt(10))
	require.ErrorIs(t, err, ledger.ErrWalletNotSet)

	wallet := strings.Repeat("a", 34)
	require.NoError(t, svc.SetWallet(ctx, "1", wallet))

	_, err = svc.SelectWithdrawal(ctx, "1", decimal.Zero)
	require.ErrorIs(t, err, withdrawals.ErrAmountNotPositive)

	_, err = svc.ConfirmWithdrawal(ctx, "1")
	require.ErrorIs(t, err, ledger.ErrNoPendingWithdrawal)

	require.NoError(t, store.CreditBalance(ctx, "1", decimal.NewFromInt(10)))

	address, err := svc.SelectWithdrawal(ctx, "1", decimal.NewFromInt(10))
	require.NoError(t, err)
	require.Equal(t, wallet, address)

	amount, ok := svc.PendingWithdrawal("1")
	require.True(t, ok)
	require.Equal(t, "10", amount.String())

	w, err := svc.ConfirmWithdrawal(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, wallet, w.Address())
	require.Equal(t, "10", w.Amount().String())

	// The full amount is debited and the stage is cleared.
	balance, err := store.GetBalance(ctx, "1")
	require.NoError(t, err)
	require.True(t, balance.IsZero())

	_, ok = svc.PendingWithdrawal("1")
	require.False(t, ok)

	_, err = svc.ConfirmWithdrawal(ctx, "1")
	require.ErrorIs(t, err, ledger.ErrNoPendingWithdrawal)

	history, err := svc.Withdrawals(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, w.ID(), history[0].ID())

	require.Len(t, notifier.operator, 1)
	require.Contains(t, notifier.operator[0], wallet)
}

func TestConfirmWithdrawalInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)

	require.NoError(t, svc.SetWallet(ctx, "1", strings.Repeat("a", 34)))
	require.NoError(t, store.CreditBalance(ctx, "1", decimal.NewFromInt(5)))

	_, err := svc.SelectWithdrawal(ctx, "1", decimal.NewFromInt(25))
	require.NoError(t, err)

	_, err = svc.ConfirmWithdrawal(ctx, "1")
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	// A failed confirmation drops the stage so the flow restarts cleanly.
	_, ok := svc.PendingWithdrawal("1")
	require.False(t, ok)

	balance, err := store.GetBalance(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "5", balance.String())

	history, err := svc.Withdrawals(ctx)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestCancelWithdrawal(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)

	require.NoError(t, svc.SetWallet(ctx, "1", strings.Repeat("a", 34)))
	require.NoError(t, store.CreditBalance(ctx, "1", decimal.NewFromInt(10)))

	_, err := svc.SelectWithdrawal(ctx, "1", decimal.NewFromInt(10))
	require.NoError(t, err)

	svc.CancelWithdrawal("1")

	_, ok := svc.PendingWithdrawal("1")
	require.False(t, ok)

	_, err = svc.ConfirmWithdrawal(ctx, "1")
	require.ErrorIs(t, err, ledger.ErrNoPendingWithdrawal)

	// Cancelling with nothing staged is a no-op.
	svc.CancelWithdrawal("1")
}

func TestRegisterAccount(t *testing.T) {
	ctx := context.Background()
	notifier := newRecordingNotifier()
	svc, _, _ := newService(t, ledger.WithNotifier(notifier))

	first, err := svc.RegisterAccount(ctx, "1", "alice")
	require.NoError(t, err)
	require.True(t, first)
	require.Len(t, notifier.operator, 1)
	require.Contains(t, notifier.operator[0], "alice")

	first, err = svc.RegisterAccount(ctx, "1", "alice_renamed")
	require.NoError(t, err)
	require.False(t, first)
	require.Len(t, notifier.operator, 1)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)

	require.NoError(t, store.CreditBalance(ctx, "1", decimal.NewFromInt(3)))
	require.NoError(t, store.CreditBalance(ctx, "2", decimal.NewFromInt(7)))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Accounts)
	require.Equal(t, "10", stats.TotalBalance.String())
}
