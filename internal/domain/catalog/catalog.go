package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrInstrumentInvalid  = errors.New("instrument definition is invalid")
)

// Instrument is an immutable catalog entry for a purchasable miner. The yield
// rate is snapshotted into every holding at purchase time, so later catalog
// changes never affect already-purchased miners.
type Instrument struct {
	name           string
	price          decimal.Decimal
	yieldPerSecond decimal.Decimal
	activeDays     int

	// Presentation attributes shown in the market listing.
	speed    string
	perHour  string
	perDay   string
	gain     string
	imageURL string
}

func NewInstrument(name string, price, yieldPerSecond decimal.Decimal, activeDays int) (Instrument, error) {
	if name == "" || price.IsNegative() || yieldPerSecond.IsNegative() || activeDays <= 0 {
		return Instrument{}, ErrInstrumentInvalid
	}

	return Instrument{
		name:           name,
		price:          price,
		yieldPerSecond: yieldPerSecond,
		activeDays:     activeDays,
	}, nil
}

func (i Instrument) Name() string {
	return i.name
}

func (i Instrument) Price() decimal.Decimal {
	return i.price
}

func (i Instrument) YieldPerSecond() decimal.Decimal {
	return i.yieldPerSecond
}

func (i Instrument) ActiveDays() int {
	return i.activeDays
}

func (i Instrument) Speed() string {
	return i.speed
}

func (i Instrument) PerHour() string {
	return i.perHour
}

func (i Instrument) PerDay() string {
	return i.perDay
}

func (i Instrument) Gain() string {
	return i.gain
}

func (i Instrument) ImageURL() string {
	return i.imageURL
}

// Catalog is a static, read-only list of instrument definitions.
type Catalog struct {
	items  []Instrument
	byName map[string]Instrument
}

func New(items ...Instrument) *Catalog {
	c := &Catalog{
		items:  items,
		byName: make(map[string]Instrument, len(items)),
	}

	for _, item := range items {
		c.byName[item.name] = item
	}

	return c
}

func (c *Catalog) Lookup(name string) (Instrument, error) {
	item, ok := c.byName[name]
	if !ok {
		return Instrument{}, ErrInstrumentNotFound
	}

	return item, nil
}

// Items returns the definitions in listing order.
func (c *Catalog) Items() []Instrument {
	items := make([]Instrument, len(c.items))
	copy(items, c.items)

	return items
}

func (c *Catalog) Len() int {
	return len(c.items)
}
