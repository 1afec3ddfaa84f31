package accounts

import (
	"errors"
)

const (
	// WalletMinLength and WalletMaxLength bound the accepted payout address
	// length. No checksum validation is performed.
	WalletMinLength = 26
	WalletMaxLength = 42
)

var (
	ErrAccountIDEmpty      = errors.New("account id is empty")
	ErrWalletFormatInvalid = errors.New("wallet address format is invalid")
)

// Account is a bot user known to the wallet directory. The wallet address is
// optional; an empty string means "not set".
type Account struct {
	id          string
	displayName string
	wallet      string
}

func NewAccount(id, displayName string) (*Account, error) {
	if err := ValidateAccountID(id); err != nil {
		return nil, err
	}

	return &Account{
		id:          id,
		displayName: displayName,
	}, nil
}

// RestoreAccount rebuilds an account from a persisted record.
func RestoreAccount(id, displayName, wallet string) (*Account, error) {
	if err := ValidateAccountID(id); err != nil {
		return nil, err
	}

	if wallet != "" {
		if err := ValidateWallet(wallet); err != nil {
			return nil, err
		}
	}

	return &Account{
		id:          id,
		displayName: displayName,
		wallet:      wallet,
	}, nil
}

func (a *Account) ID() string {
	return a.id
}

func (a *Account) DisplayName() string {
	return a.displayName
}

func (a *Account) Wallet() string {
	return a.wallet
}

func (a *Account) HasWallet() bool {
	return a.wallet != ""
}

func (a *Account) SetDisplayName(name string) {
	a.displayName = name
}

func (a *Account) SetWallet(address string) error {
	if err := ValidateWallet(address); err != nil {
		return err
	}

	a.wallet = address

	return nil
}

func ValidateAccountID(id string) error {
	if id == "" {
		return ErrAccountIDEmpty
	}

	return nil
}

func ValidateWallet(address string) error {
	if len(address) < WalletMinLength || len(address) > WalletMaxLength {
		return ErrWalletFormatInvalid
	}

	return nil
}
