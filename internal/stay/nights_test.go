package stay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(d Date) *Date { return &d }

func TestNights(t *testing.T) {
	start := NewDate(2026, time.March, 1)

	assert.Equal(t, 3, Nights(datePtr(start), datePtr(NewDate(2026, time.March, 4))))
	assert.Equal(t, 1, Nights(datePtr(start), datePtr(NewDate(2026, time.March, 2))))
	assert.Equal(t, 1, Nights(nil, datePtr(start)))
	assert.Equal(t, 1, Nights(datePtr(start), nil))
	assert.Equal(t, 1, Nights(nil, nil))
	assert.Equal(t, 0, Nights(datePtr(start), datePtr(start)))
	assert.Equal(t, 0, Nights(datePtr(start), datePtr(NewDate(2026, time.February, 27))))
}

func TestNightsAcrossDSTChange(t *testing.T) {
	// Europe switches to summer time on 2026-03-29.
	start := NewDate(2026, time.March, 28)
	end := NewDate(2026, time.March, 30)
	assert.Equal(t, 2, Nights(&start, &end))

	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	s := FromTime(time.Date(2026, time.October, 24, 0, 0, 0, 0, paris).Add(12 * time.Hour))
	e := FromTime(time.Date(2026, time.October, 26, 0, 0, 0, 0, paris).Add(12 * time.Hour))
	assert.Equal(t, 2, Nights(&s, &e))
}

func TestNightsMonotonicInEndDate(t *testing.T) {
	start := NewDate(2026, time.January, 15)
	previous := Nights(&start, datePtr(start.AddDays(-30)))
	for offset := -29; offset <= 400; offset++ {
		end := start.AddDays(offset)
		current := Nights(&start, &end)
		assert.GreaterOrEqual(t, current, previous, "offset %d", offset)
		previous = current
	}
}

func TestNightsOverCenturies(t *testing.T) {
	start := NewDate(1700, time.January, 1)
	end := NewDate(9999, time.December, 31)

	far := Nights(&start, &end)
	nearer := Nights(&start, datePtr(end.AddDays(-1)))
	assert.Equal(t, 3031511, far)
	assert.Equal(t, far-1, nearer)
}

func TestNightsFromYearOne(t *testing.T) {
	var first Date
	assert.Equal(t, 2, Nights(&first, datePtr(first.AddDays(2))))
	assert.Equal(t, 0, Nights(&first, &first))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", d.String())
	assert.Equal(t, "01/03/2026", d.Format())

	d, err = ParseDate("2026-03-01T22:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", d.String())

	_, err = ParseDate("01/03/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)

	opt, err := ParseOptional("  ")
	require.NoError(t, err)
	assert.Nil(t, opt)

	assert.Equal(t, MissingDateLabel, FormatOptional(nil))
	assert.Equal(t, "04/03/2026", FormatOptional(datePtr(NewDate(2026, time.March, 4))))
}

func TestOrdered(t *testing.T) {
	start := NewDate(2026, time.March, 1)
	assert.True(t, Ordered(&start, datePtr(start.AddDays(1))))
	assert.False(t, Ordered(&start, &start))
	assert.False(t, Ordered(nil, &start))
}

func TestDateScanValue(t *testing.T) {
	d := NewDate(2025, time.August, 3)
	v, err := d.Value()
	require.NoError(t, err)

	var back Date
	require.NoError(t, back.Scan(v))
	assert.True(t, back.Equal(d))

	require.NoError(t, back.Scan("2025-08-04"))
	assert.Equal(t, "2025-08-04", back.String())
	require.NoError(t, back.Scan([]byte("2025-08-05T00:00:00Z")))
	assert.Equal(t, "2025-08-05", back.String())
	require.NoError(t, back.Scan(nil))
	assert.True(t, back.IsZero())
	assert.Error(t, back.Scan(42))

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
