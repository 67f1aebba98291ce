package dividend

import (
	"strconv"
	"strings"
	"time"
)

// thaiMonths maps Thai month names, full and abbreviated, to month numbers
var thaiMonths = map[string]time.Month{
	"มกราคม":     time.January,
	"กุมภาพันธ์": time.February,
	"มีนาคม":     time.March,
	"เมษายน":     time.April,
	"พฤษภาคม":    time.May,
	"มิถุนายน":   time.June,
	"กรกฎาคม":    time.July,
	"สิงหาคม":    time.August,
	"กันยายน":    time.September,
	"ตุลาคม":     time.October,
	"พฤศจิกายน":  time.November,
	"ธันวาคม":    time.December,
	"ม.ค.":       time.January,
	"ก.พ.":       time.February,
	"มี.ค.":      time.March,
	"เม.ย.":      time.April,
	"พ.ค.":       time.May,
	"มิ.ย.":      time.June,
	"ก.ค.":       time.July,
	"ส.ค.":       time.August,
	"ก.ย.":       time.September,
	"ต.ค.":       time.October,
	"พ.ย.":       time.November,
	"ธ.ค.":       time.December,
}

// EraConfig holds the year-disambiguation thresholds for Thai date strings.
// The page mixes two-digit Buddhist short years, four-digit Buddhist years
// and occasionally Gregorian years, so the conversion is heuristic.
type EraConfig struct {
	// ShortYearOffset is added to two-digit years (67 -> 2567)
	ShortYearOffset int
	// CutoverYear is the threshold above which a year is taken as Buddhist era
	CutoverYear int
	// EraOffset is subtracted to convert Buddhist era to Gregorian (2567 -> 2024)
	EraOffset int
	// StaleYears is how many whole years before the reference year a date may
	// fall before it is rejected as misparsed or stale
	StaleYears int
}

// DefaultEraConfig returns the thresholds observed on the SET pages
func DefaultEraConfig() EraConfig {
	return EraConfig{
		ShortYearOffset: 2500,
		CutoverYear:     2200,
		EraOffset:       543,
		StaleYears:      1,
	}
}

// Normalizer converts locale-specific date strings into UTC calendar dates
type Normalizer struct {
	era EraConfig
}

// NewNormalizer creates a normalizer with the given era thresholds
func NewNormalizer(era EraConfig) *Normalizer {
	return &Normalizer{era: era}
}

// Normalize parses raw into a UTC date at midnight, or nil when the string is
// malformed, out of range, or more than StaleYears before referenceNow.
// Accepted forms: dd/mm/yy, dd/mm/yyyy and "<day> <Thai month> <year>".
func (n *Normalizer) Normalize(raw string, referenceNow time.Time) *time.Time {
	day, month, year, ok := n.tokenize(strings.TrimSpace(raw))
	if !ok {
		return nil
	}

	year = n.toGregorian(year)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	if year < referenceNow.UTC().Year()-n.era.StaleYears {
		return nil
	}

	dt := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. 30 Feb -> 1 Mar); treat that as malformed
	if dt.Day() != day || dt.Month() != time.Month(month) || dt.Year() != year {
		return nil
	}
	return &dt
}

// NormalizeFiscalYear converts an era-tagged year string to a Gregorian year,
// or 0 when the string is not numeric.
func (n *Normalizer) NormalizeFiscalYear(raw string) int {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year <= 0 {
		return 0
	}
	return n.toGregorian(year)
}

// toGregorian applies the two-digit and Buddhist-era heuristics
func (n *Normalizer) toGregorian(year int) int {
	if year < 100 {
		year += n.era.ShortYearOffset
	}
	if year > n.era.CutoverYear {
		year -= n.era.EraOffset
	}
	return year
}

// tokenize extracts day, month and year from the supported formats
func (n *Normalizer) tokenize(raw string) (day, month, year int, ok bool) {
	if raw == "" {
		return 0, 0, 0, false
	}

	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		if len(parts) != 3 {
			return 0, 0, 0, false
		}
		d, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
		m, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
		y, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
		if errD != nil || errM != nil || errY != nil {
			return 0, 0, 0, false
		}
		return d, m, y, true
	}

	// "<day> <Thai month name> <year>"
	fields := strings.Fields(raw)
	if len(fields) != 3 {
		return 0, 0, 0, false
	}
	d, errD := strconv.Atoi(fields[0])
	y, errY := strconv.Atoi(fields[2])
	if errD != nil || errY != nil {
		return 0, 0, 0, false
	}
	m, found := thaiMonths[fields[1]]
	if !found {
		return 0, 0, 0, false
	}
	return d, int(m), y, true
}

// NextEventDate derives the upcoming-event timestamp from the two normalized
// dates: the earlier when both are present, the present one otherwise, nil
// when neither survived normalization.
func NextEventDate(exDate, payDate *time.Time) *time.Time {
	switch {
	case exDate == nil:
		return payDate
	case payDate == nil:
		return exDate
	case exDate.Before(*payDate):
		return exDate
	default:
		return payDate
	}
}
