package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/minerdrop/minerdrop/internal/domain/accounts"
	"github.com/minerdrop/minerdrop/internal/domain/catalog"
	"github.com/minerdrop/minerdrop/internal/domain/holdings"
	"github.com/minerdrop/minerdrop/internal/domain/referrals"
	"github.com/minerdrop/minerdrop/internal/domain/withdrawals"
	"github.com/minerdrop/minerdrop/internal/storage"
	"github.com/minerdrop/minerdrop/internal/storage/filestore"
)

func TestReopenRoundtrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := filestore.OpenStorage(dir)
	require.NoError(t, err)

	require.NoError(t, store.CreditBalance(ctx, "1", decimal.RequireFromString("0.0006")))

	mark := &storage.BonusMark{
		LastClaimAt:    time.Unix(1700000000, 0),
		WelcomeClaimed: true,
	}
	require.NoError(t, store.SaveBonusMark(ctx, "1", mark))

	acc, err := accounts.NewAccount("1", "alice")
	require.NoError(t, err)
	require.NoError(t, acc.SetWallet(strings.Repeat("a", 34)))
	require.NoError(t, store.SaveAccount(ctx, acc))

	rec, err := referrals.NewRecord("1", "alice")
	require.NoError(t, err)
	rec.Add("2")
	require.NoError(t, store.SaveReferralRecord(ctx, rec))

	inst, err := catalog.Default().Lookup("Solar Panel 1")
	require.NoError(t, err)
	h := holdings.NewHolding(inst, time.Unix(1700000000, 0))
	require.NoError(t, store.SaveHoldings(ctx, "1", []*holdings.Holding{h}))

	w, err := withdrawals.NewWithdrawal("1", acc.Wallet(), decimal.NewFromInt(10), time.Unix(1700000000, 0))
	require.NoError(t, err)
	require.NoError(t, store.CreateWithdrawal(ctx, w))

	require.NoError(t, store.AddSubscriber(ctx, "1"))

	// A fresh open must read everything back from disk.
	reopened, err := filestore.OpenStorage(dir)
	require.NoError(t, err)

	balance, err := reopened.GetBalance(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "0.0006", balance.String())

	gotMark, err := reopened.GetBonusMark(ctx, "1")
	require.NoError(t, err)
	require.True(t, gotMark.WelcomeClaimed)
	require.Equal(t, mark.LastClaimAt.Unix(), gotMark.LastClaimAt.Unix())

	gotAcc, err := reopened.GetAccount(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, acc.Wallet(), gotAcc.Wallet())

	gotRec, err := reopened.GetReferralRecord(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, []string{"2"}, gotRec.ReferredIDs())

	gotHoldings, err := reopened.GetHoldings(ctx, "1")
	require.NoError(t, err)
	require.Len(t, gotHoldings, 1)
	require.Equal(t, "Solar Panel 1", gotHoldings[0].InstrumentName())
	require.True(t, h.YieldPerSecond().Equal(gotHoldings[0].YieldPerSecond()))

	gotWithdrawals, err := reopened.GetWithdrawals(ctx)
	require.NoError(t, err)
	require.Len(t, gotWithdrawals, 1)
	require.Equal(t, w.ID(), gotWithdrawals[0].ID())
	require.Equal(t, "10", gotWithdrawals[0].Amount().String())

	ok, err := reopened.IsSubscriber(ctx, "1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDebitBalance(t *testing.T) {
	ctx := context.Background()

	store, err := filestore.OpenStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.CreditBalance(ctx, "1", decimal.NewFromInt(10)))

	err = store.DebitBalance(ctx, "1", decimal.NewFromInt(11))
	require.ErrorIs(t, err, storage.ErrBalanceNotEnough)

	require.NoError(t, store.DebitBalance(ctx, "1", decimal.NewFromInt(10)))

	balance, err := store.GetBalance(ctx, "1")
	require.NoError(t, err)
	require.True(t, balance.IsZero())
}

func TestFeedPersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := filestore.OpenStorage(dir)
	require.NoError(t, err)

	feed, err := store.GetFeed(ctx)
	require.NoError(t, err)
	require.False(t, feed.CountdownEndAt.IsZero())

	feed.Messages = append(feed.Messages, "first")
	require.NoError(t, store.SaveFeed(ctx, feed))

	reopened, err := filestore.OpenStorage(dir)
	require.NoError(t, err)

	got, err := reopened.GetFeed(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"first"}, got.Messages)

	// The countdown end survives reopen instead of restarting.
	require.Equal(t, feed.CountdownEndAt.Unix(), got.CountdownEndAt.Unix())
}

func TestOpenStorageMalformedFile(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "balances.json"), []byte("{not json"), 0o600))

	_, err := filestore.OpenStorage(dir)
	require.Error(t, err)
}

func TestWalletUniqueness(t *testing.T) {
	ctx := context.Background()

	store, err := filestore.OpenStorage(t.TempDir())
	require.NoError(t, err)

	wallet := strings.Repeat("a", 34)

	first, err := accounts.NewAccount("1", "alice")
	require.NoError(t, err)
	require.NoError(t, first.SetWallet(wallet))
	require.NoError(t, store.SaveAccount(ctx, first))

	second, err := accounts.NewAccount("2", "bob")
	require.NoError(t, err)
	require.NoError(t, second.SetWallet(wallet))
	require.ErrorIs(t, store.SaveAccount(ctx, second), storage.ErrWalletInUse)
}
