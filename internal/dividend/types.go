package dividend

import "time"

// Event represents one distribution event for one symbol.
// Everything except NextEventDate is immutable once persisted.
type Event struct {
	Symbol        string     `bson:"symbol" json:"symbol"`
	FiscalYear    int        `bson:"fiscal_year" json:"fiscal_year"`
	Period        string     `bson:"period,omitempty" json:"period,omitempty"`
	YieldPercent  string     `bson:"yield_percent,omitempty" json:"yield_percent,omitempty"`
	Amount        string     `bson:"amount" json:"amount"`
	ExDate        *time.Time `bson:"ex_date" json:"ex_date"`
	PayDate       *time.Time `bson:"pay_date" json:"pay_date"`
	EventType     string     `bson:"event_type" json:"event_type"`
	ScrapedAt     time.Time  `bson:"scraped_at" json:"scraped_at"`
	NextEventDate *time.Time `bson:"next_event_date" json:"next_event_date"`
}

// Key is the natural key of an Event. NextEventDate is derived and
// deliberately not part of it.
type Key struct {
	Symbol     string
	FiscalYear int
	Period     string
	Amount     string
	ExDate     time.Time
	EventType  string
}

// NaturalKey returns the natural key of the event. A nil ExDate maps to the
// zero time so the key stays comparable.
func (e *Event) NaturalKey() Key {
	k := Key{
		Symbol:     e.Symbol,
		FiscalYear: e.FiscalYear,
		Period:     e.Period,
		Amount:     e.Amount,
		EventType:  e.EventType,
	}
	if e.ExDate != nil {
		k.ExDate = *e.ExDate
	}
	return k
}

// RawRow is one row extracted from a source page before normalization
type RawRow struct {
	Symbol     string
	FiscalYear string
	Period     string
	Yield      string
	Amount     string
	ExDate     string
	PayDate    string
	EventType  string
}

// SymbolDividends is the serialized response for one symbol
type SymbolDividends struct {
	Symbol    string  `json:"symbol"`
	Dividends []Event `json:"dividends"`
	Timestamp int64   `json:"timestamp"`
}

// YearSummary pairs a symbol with its latest event in a given year
type YearSummary struct {
	Symbol      string `json:"symbol"`
	LatestEvent *Event `json:"latest_event"`
}
