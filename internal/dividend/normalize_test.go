package dividend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func refNow() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeShortBuddhistYear(t *testing.T) {
	n := NewNormalizer(DefaultEraConfig())

	// 67 -> 2567 Buddhist -> 2024 Gregorian
	dt := n.Normalize("10/09/67", refNow())
	assert.NotNil(t, dt)
	assert.Equal(t, time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC), *dt)
}

func TestNormalizeFourDigitBuddhistYear(t *testing.T) {
	n := NewNormalizer(DefaultEraConfig())

	dt := n.Normalize("15/05/2567", refNow())
	assert.NotNil(t, dt)
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), *dt)
}

func TestNormalizeGregorianYearPassesThrough(t *testing.T) {
	n := NewNormalizer(DefaultEraConfig())

	dt := n.Normalize("01/02/2024", refNow())
	assert.NotNil(t, dt)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *dt)
}

func TestNormalizeThaiMonthName(t *testing.T) {
	n := NewNormalizer(DefaultEraConfig())

	// Full month name with a four-digit Buddhist year
	dt := n.Normalize("31 ธันวาคม 2566", refNow())
	assert.NotNil(t, dt)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), *dt)

	// Abbreviated month name as used on the calendar dropdowns
	dt = n.Normalize("5 เม.ย. 2567", refNow())
	assert.NotNil(t, dt)
	assert.Equal(t, time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC), *dt)
}

func TestNormalizeRejectsMalformed(t *testing.T) {
	n := NewNormalizer(DefaultEraConfig())
	now := refNow()

	assert.Nil(t, n.Normalize("", now))
	assert.Nil(t, n.Normalize("-", now))
	assert.Nil(t, n.Normalize("10/09", now))
	assert.Nil(t, n.Normalize("aa/bb/cc", now))
	assert.Nil(t, n.Normalize("10 NotAMonth 2567", now))

	// Out-of-range month and day
	assert.Nil(t, n.Normalize("15/13/99", now))
	assert.Nil(t, n.Normalize("32/01/67", now))

	// A day that does not exist in the month
	assert.Nil(t, n.Normalize("30/02/67", now))
}

func TestNormalizeRejectsStaleYears(t *testing.T) {
	n := NewNormalizer(DefaultEraConfig())
	now := refNow()

	// 2565 Buddhist -> 2022, more than one year before 2024
	assert.Nil(t, n.Normalize("10/09/2565", now))

	// One year back is still within the window
	dt := n.Normalize("10/09/2566", now)
	assert.NotNil(t, dt)
	assert.Equal(t, 2023, dt.Year())
}

func TestNormalizeConfigurableThresholds(t *testing.T) {
	era := DefaultEraConfig()
	era.StaleYears = 3
	n := NewNormalizer(era)

	// With a wider staleness window 2022 is accepted
	dt := n.Normalize("10/09/2565", refNow())
	assert.NotNil(t, dt)
	assert.Equal(t, 2022, dt.Year())
}

func TestNormalizeFiscalYear(t *testing.T) {
	n := NewNormalizer(DefaultEraConfig())

	assert.Equal(t, 2023, n.NormalizeFiscalYear("2566"))
	assert.Equal(t, 2024, n.NormalizeFiscalYear("2024"))
	assert.Equal(t, 2024, n.NormalizeFiscalYear("67"))
	assert.Equal(t, 0, n.NormalizeFiscalYear("abc"))
	assert.Equal(t, 0, n.NormalizeFiscalYear(""))
}

func TestNextEventDate(t *testing.T) {
	ex := time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)
	pay := time.Date(2024, 9, 25, 0, 0, 0, 0, time.UTC)

	// Both present: the earlier wins
	got := NextEventDate(&ex, &pay)
	assert.Equal(t, ex, *got)
	got = NextEventDate(&pay, &ex)
	assert.Equal(t, ex, *got)

	// Only one present: use it
	got = NextEventDate(&ex, nil)
	assert.Equal(t, ex, *got)
	got = NextEventDate(nil, &pay)
	assert.Equal(t, pay, *got)

	// Neither present
	assert.Nil(t, NextEventDate(nil, nil))
}
