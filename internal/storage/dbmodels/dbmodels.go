package dbmodels

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Balance struct {
	UserID string
	Amount decimal.Decimal
}

type BonusMark struct {
	UserID         string
	LastClaimAt    sql.NullTime
	WelcomeClaimed bool
}

type Referral struct {
	ReferrerID  string
	DisplayName string
	ReferredIDs []string
}

type Account struct {
	UserID      string
	DisplayName string
	Wallet      sql.NullString
}

type Holding struct {
	UserID         string
	Name           string
	AcquiredAt     time.Time
	ExpiresAt      time.Time
	YieldPerSecond decimal.Decimal
}

type Withdrawal struct {
	ID          string
	UserID      string
	Address     string
	Amount      decimal.Decimal
	ProcessedAt time.Time
}
