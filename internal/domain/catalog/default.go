package catalog

import "github.com/shopspring/decimal"

const panelImageURL = "https://thumbs.dreamstime.com/b/solar-panels-under-sun-cartoon-produces-recyclabel-electric-energy-119958874.jpg"

type panelSpec struct {
	name    string
	price   string
	yps     string
	days    int
	speed   string
	perHour string
	perDay  string
	gain    string
}

var panels = []panelSpec{
	{"Solar Panel 1", "0.002", "0.00000382", 3, "150 GH/s", "0.01375 USDT", "0.33 USDT", "1 USDT"},
	{"Solar Panel 2", "3", "0.0000116", 6, "300 GH/s", "0.0417 USDT", "1 USDT", "6 USDT"},
	{"Solar Panel 3", "5", "0.0000193", 9, "450 GH/s", "0.0694 USDT", "1.67 USDT", "10 USDT"},
	{"Solar Panel 4", "7", "0.000027", 12, "600 GH/s", "0.0972 USDT", "2.33 USDT", "14 USDT"},
	{"Solar Panel 5", "9", "0.0000347", 15, "750 GH/s", "0.125 USDT", "3 USDT", "18 USDT"},
	{"Solar Panel 6", "11", "0.0000424", 18, "900 GH/s", "0.1528 USDT", "3.67 USDT", "22 USDT"},
	{"Solar Panel 7", "13", "0.0000502", 21, "1050 GH/s", "0.1806 USDT", "4.33 USDT", "26 USDT"},
	{"Solar Panel 8", "15", "0.0000577", 24, "1200 GH/s", "0.2083 USDT", "5 USDT", "30 USDT"},
	{"Solar Panel 9", "17", "0.0000652", 27, "1350 GH/s", "0.2361 USDT", "5.67 USDT", "34 USDT"},
	{"Solar Panel 10", "19", "0.0000724", 30, "1500 GH/s", "0.2639 USDT", "6.33 USDT", "38 USDT"},
}

// Default returns the deploy-time miner catalog.
func Default() *Catalog {
	items := make([]Instrument, 0, len(panels))

	for _, p := range panels {
		items = append(items, Instrument{
			name:           p.name,
			price:          decimal.RequireFromString(p.price),
			yieldPerSecond: decimal.RequireFromString(p.yps),
			activeDays:     p.days,
			speed:          p.speed,
			perHour:        p.perHour,
			perDay:         p.perDay,
			gain:           p.gain,
			imageURL:       panelImageURL,
		})
	}

	return New(items...)
}
