package holdings_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/minerdrop/minerdrop/internal/domain/catalog"
	"github.com/minerdrop/minerdrop/internal/domain/holdings"
)

func TestAccrue(t *testing.T) {
	cat := catalog.Default()

	inst, err := cat.Lookup("Solar Panel 1")
	require.NoError(t, err)

	t0 := time.Unix(1700000000, 0)
	h := holdings.NewHolding(inst, t0)

	require.Equal(t, "Solar Panel 1", h.InstrumentName())
	require.Equal(t, t0, h.AcquiredAt())
	require.Equal(t, t0.AddDate(0, 0, 3), h.ExpiresAt())
	require.False(t, h.Expired(t0))

	// 1000 seconds at 0.00000382 per second.
	now := t0.Add(1000 * time.Second)
	earned := h.Accrue(now)
	require.Equal(t, "0.00382", earned.String())

	// The accrual window is advanced, so repeating immediately yields zero.
	require.Equal(t, now, h.AcquiredAt())
	require.True(t, h.Accrue(now).IsZero())
}

func TestAccrueExpired(t *testing.T) {
	cat := catalog.Default()

	inst, err := cat.Lookup("Solar Panel 1")
	require.NoError(t, err)

	t0 := time.Unix(1700000000, 0)
	h := holdings.NewHolding(inst, t0)

	expiry := t0.AddDate(0, 0, 3)

	require.False(t, h.Expired(expiry.Add(-time.Second)))
	require.True(t, h.Expired(expiry))

	// An expired holding accrues nothing and keeps its window untouched.
	require.True(t, h.Accrue(expiry.Add(time.Hour)).IsZero())
	require.Equal(t, t0, h.AcquiredAt())
}

func TestAccrueBackwardsClock(t *testing.T) {
	cat := catalog.Default()

	inst, err := cat.Lookup("Solar Panel 2")
	require.NoError(t, err)

	t0 := time.Unix(1700000000, 0)
	h := holdings.NewHolding(inst, t0)

	require.True(t, h.Accrue(t0.Add(-time.Minute)).IsZero())
	require.Equal(t, t0, h.AcquiredAt())
}

func TestRestoreHolding(t *testing.T) {
	t0 := time.Unix(1700000000, 0)
	yps := decimal.RequireFromString("0.00000382")

	h, err := holdings.RestoreHolding("Solar Panel 1", t0, t0.AddDate(0, 0, 3), yps)
	require.NoError(t, err)
	require.Equal(t, "Solar Panel 1", h.InstrumentName())
	require.True(t, yps.Equal(h.YieldPerSecond()))

	_, err = holdings.RestoreHolding("", t0, t0.AddDate(0, 0, 3), yps)
	require.ErrorIs(t, err, holdings.ErrHoldingInvalid)

	_, err = holdings.RestoreHolding("Solar Panel 1", time.Time{}, t0, yps)
	require.ErrorIs(t, err, holdings.ErrHoldingInvalid)

	_, err = holdings.RestoreHolding("Solar Panel 1", t0, t0, decimal.NewFromInt(-1))
	require.ErrorIs(t, err, holdings.ErrHoldingInvalid)
}
