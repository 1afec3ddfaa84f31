package catalog_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/minerdrop/minerdrop/internal/domain/catalog"
)

func TestDefaultCatalog(t *testing.T) {
	cat := catalog.Default()

	require.Equal(t, 10, cat.Len())

	first, err := cat.Lookup("Solar Panel 1")
	require.NoError(t, err)
	require.Equal(t, "0.002", first.Price().String())
	require.Equal(t, "0.00000382", first.YieldPerSecond().String())
	require.Equal(t, 3, first.ActiveDays())
	require.Equal(t, "150 GH/s", first.Speed())
	require.Equal(t, "1 USDT", first.Gain())
	require.NotEmpty(t, first.ImageURL())

	last, err := cat.Lookup("Solar Panel 10")
	require.NoError(t, err)
	require.Equal(t, "19", last.Price().String())
	require.Equal(t, 30, last.ActiveDays())

	items := cat.Items()
	require.Len(t, items, 10)

	for i, item := range items {
		require.Equal(t, fmt.Sprintf("Solar Panel %d", i+1), item.Name())
	}
}

func TestLookupUnknown(t *testing.T) {
	cat := catalog.Default()

	_, err := cat.Lookup("Solar Panel 11")
	require.ErrorIs(t, err, catalog.ErrInstrumentNotFound)
}

func TestNewInstrument(t *testing.T) {
	price := decimal.NewFromInt(3)
	yps := decimal.RequireFromString("0.0000116")

	inst, err := catalog.NewInstrument("Miner", price, yps, 6)
	require.NoError(t, err)
	require.Equal(t, "Miner", inst.Name())

	_, err = catalog.NewInstrument("", price, yps, 6)
	require.ErrorIs(t, err, catalog.ErrInstrumentInvalid)

	_, err = catalog.NewInstrument("Miner", decimal.NewFromInt(-1), yps, 6)
	require.ErrorIs(t, err, catalog.ErrInstrumentInvalid)

	_, err = catalog.NewInstrument("Miner", price, yps, 0)
	require.ErrorIs(t, err, catalog.ErrInstrumentInvalid)
}
