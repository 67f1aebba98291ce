package dividend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildEvents(t *testing.T) {
	n := NewNormalizer(DefaultEraConfig())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := []RawRow{
		{
			Symbol:     "ptt",
			FiscalYear: "2567",
			Period:     "Q1",
			Amount:     "0.80",
			ExDate:     "10/09/67",
			PayDate:    "25/09/67",
			EventType:  "เงินปันผล",
		},
		{
			// Broken dates survive as a row with nil dates
			Symbol:    "AOT",
			Amount:    "0.35",
			ExDate:    "-",
			PayDate:   "",
			EventType: "เงินปันผล",
		},
	}

	events := BuildEvents(rows, n, now)
	assert.Len(t, events, 2)

	ptt := events[0]
	assert.Equal(t, "PTT", ptt.Symbol)
	assert.Equal(t, 2024, ptt.FiscalYear)
	assert.Equal(t, "Q1", ptt.Period)
	assert.NotNil(t, ptt.ExDate)
	assert.NotNil(t, ptt.PayDate)
	assert.NotNil(t, ptt.NextEventDate)
	assert.Equal(t, *ptt.ExDate, *ptt.NextEventDate)
	assert.Equal(t, now, ptt.ScrapedAt)

	aot := events[1]
	assert.Equal(t, "AOT", aot.Symbol)
	assert.Nil(t, aot.ExDate)
	assert.Nil(t, aot.PayDate)
	assert.Nil(t, aot.NextEventDate)
	assert.Equal(t, 0, aot.FiscalYear)
}

func TestBuildEventsFiscalYearFallback(t *testing.T) {
	n := NewNormalizer(DefaultEraConfig())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// No fiscal year token: falls back to the ex-date year
	events := BuildEvents([]RawRow{
		{Symbol: "KBANK", Amount: "1.25", ExDate: "15/05/2567", EventType: "เงินปันผล"},
	}, n, now)
	assert.Len(t, events, 1)
	assert.Equal(t, 2024, events[0].FiscalYear)

	// No ex-date either: falls back to the pay-date year
	events = BuildEvents([]RawRow{
		{Symbol: "KBANK", Amount: "1.25", PayDate: "20/05/2567", EventType: "เงินปันผล"},
	}, n, now)
	assert.Len(t, events, 1)
	assert.Equal(t, 2024, events[0].FiscalYear)
}

func TestNaturalKeyIgnoresNextEventDate(t *testing.T) {
	ex := time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)
	next1 := time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)
	next2 := time.Date(2024, 9, 25, 0, 0, 0, 0, time.UTC)

	a := Event{Symbol: "PTT", FiscalYear: 2024, Amount: "0.80", ExDate: &ex, EventType: "เงินปันผล", NextEventDate: &next1}
	b := Event{Symbol: "PTT", FiscalYear: 2024, Amount: "0.80", ExDate: &ex, EventType: "เงินปันผล", NextEventDate: &next2}

	assert.Equal(t, a.NaturalKey(), b.NaturalKey())

	// Nil ex-date maps to the zero time
	c := Event{Symbol: "PTT", FiscalYear: 2024, Amount: "0.80", EventType: "เงินปันผล"}
	assert.Equal(t, time.Time{}, c.NaturalKey().ExDate)
}
