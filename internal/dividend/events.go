package dividend

import (
	"strings"
	"time"
)

// BuildEvents normalizes raw rows into events. Rows whose dates fail to
// parse are kept with nil dates; normalization never drops a row.
func BuildEvents(rows []RawRow, n *Normalizer, now time.Time) []Event {
	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		exDate := n.Normalize(row.ExDate, now)
		payDate := n.Normalize(row.PayDate, now)

		fiscalYear := n.NormalizeFiscalYear(row.FiscalYear)
		if fiscalYear == 0 {
			// fall back to the event's own calendar year
			if exDate != nil {
				fiscalYear = exDate.Year()
			} else if payDate != nil {
				fiscalYear = payDate.Year()
			}
		}

		events = append(events, Event{
			Symbol:        strings.ToUpper(strings.TrimSpace(row.Symbol)),
			FiscalYear:    fiscalYear,
			Period:        row.Period,
			YieldPercent:  row.Yield,
			Amount:        row.Amount,
			ExDate:        exDate,
			PayDate:       payDate,
			EventType:     row.EventType,
			ScrapedAt:     now,
			NextEventDate: NextEventDate(exDate, payDate),
		})
	}
	return events
}
