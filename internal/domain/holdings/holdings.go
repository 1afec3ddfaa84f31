package holdings

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minerdrop/minerdrop/internal/domain/catalog"
)

var ErrHoldingInvalid = errors.New("holding record is invalid")

// Holding is one purchased miner instance. The accrual window starts at
// acquiredAt and is advanced to "now" on every collection, so elapsed time
// always means "time since last collection or purchase". The expiry timestamp
// is fixed at purchase and never recomputed; an expired holding stays in the
// list but yields zero forever.
type Holding struct {
	instrumentName string
	acquiredAt     time.Time
	expiresAt      time.Time
	yieldPerSecond decimal.Decimal
}

func NewHolding(inst catalog.Instrument, now time.Time) *Holding {
	return &Holding{
		instrumentName: inst.Name(),
		acquiredAt:     now,
		expiresAt:      now.AddDate(0, 0, inst.ActiveDays()),
		yieldPerSecond: inst.YieldPerSecond(),
	}
}

// RestoreHolding rebuilds a holding from a persisted record.
func RestoreHolding(name string, acquiredAt, expiresAt time.Time, yieldPerSecond decimal.Decimal) (*Holding, error) {
	if name == "" || acquiredAt.IsZero() || expiresAt.IsZero() || yieldPerSecond.IsNegative() {
		return nil, ErrHoldingInvalid
	}

	return &Holding{
		instrumentName: name,
		acquiredAt:     acquiredAt,
		expiresAt:      expiresAt,
		yieldPerSecond: yieldPerSecond,
	}, nil
}

func (h *Holding) InstrumentName() string {
	return h.instrumentName
}

func (h *Holding) AcquiredAt() time.Time {
	return h.acquiredAt
}

func (h *Holding) ExpiresAt() time.Time {
	return h.expiresAt
}

func (h *Holding) YieldPerSecond() decimal.Decimal {
	return h.yieldPerSecond
}

func (h *Holding) Expired(now time.Time) bool {
	return !now.Before(h.expiresAt)
}

// Accrue converts the elapsed accrual window into earnings and resets the
// window to start at now, so an immediate second call yields zero. Expired
// holdings always accrue zero and keep their window untouched.
func (h *Holding) Accrue(now time.Time) decimal.Decimal {
	if h.Expired(now) {
		return decimal.Zero
	}

	elapsed := now.Sub(h.acquiredAt)
	if elapsed <= 0 {
		return decimal.Zero
	}

	h.acquiredAt = now

	return h.yieldPerSecond.Mul(decimal.NewFromFloat(elapsed.Seconds()))
}
