package accounts_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minerdrop/minerdrop/internal/domain/accounts"
)

func TestNewAccount(t *testing.T) {
	acc, err := accounts.NewAccount("42", "alice")
	require.NoError(t, err)
	require.Equal(t, "42", acc.ID())
	require.Equal(t, "alice", acc.DisplayName())
	require.False(t, acc.HasWallet())

	_, err = accounts.NewAccount("", "alice")
	require.ErrorIs(t, err, accounts.ErrAccountIDEmpty)
}

func TestSetWallet(t *testing.T) {
	acc, err := accounts.NewAccount("42", "alice")
	require.NoError(t, err)

	short := strings.Repeat("a", accounts.WalletMinLength-1)
	long := strings.Repeat("a", accounts.WalletMaxLength+1)

	require.ErrorIs(t, acc.SetWallet(short), accounts.ErrWalletFormatInvalid)
	require.ErrorIs(t, acc.SetWallet(long), accounts.ErrWalletFormatInvalid)
	require.False(t, acc.HasWallet())

	min := strings.Repeat("a", accounts.WalletMinLength)
	require.NoError(t, acc.SetWallet(min))
	require.Equal(t, min, acc.Wallet())

	max := strings.Repeat("b", accounts.WalletMaxLength)
	require.NoError(t, acc.SetWallet(max))
	require.Equal(t, max, acc.Wallet())
	require.True(t, acc.HasWallet())
}

func TestRestoreAccount(t *testing.T) {
	wallet := strings.Repeat("c", 34)

	acc, err := accounts.RestoreAccount("42", "alice", wallet)
	require.NoError(t, err)
	require.Equal(t, wallet, acc.Wallet())

	// An empty wallet restores as "not set".
	acc, err = accounts.RestoreAccount("42", "alice", "")
	require.NoError(t, err)
	require.False(t, acc.HasWallet())

	_, err = accounts.RestoreAccount("42", "alice", "tooshort")
	require.ErrorIs(t, err, accounts.ErrWalletFormatInvalid)
}
