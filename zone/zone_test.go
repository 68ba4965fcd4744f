package zone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToFixedOffset(t *testing.T) {
	z := Load("Nowhere/Not_A_Zone")
	assert.Equal(t, "UTC-03:00", z.Name())

	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, z.Location()).Zone()
	assert.Equal(t, -3*3600, offset)
}

func TestLoadDefault(t *testing.T) {
	z := Load("")
	assert.Contains(t, []string{DefaultName, "UTC-03:00"}, z.Name())
}

func TestDateUsesLocalCalendar(t *testing.T) {
	z := Fixed()

	// 02:00 UTC is still the previous evening in UTC-3.
	d := z.Date(time.Date(2025, 10, 28, 2, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-10-27", d.String())

	d = z.Date(time.Date(2025, 10, 28, 3, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-10-28", d.String())
}

func TestWeekOf(t *testing.T) {
	z := Fixed()

	testCases := []struct {
		date      string
		wantStart string
		wantEnd   string
	}{
		{date: "2025-10-27", wantStart: "2025-10-27", wantEnd: "2025-11-02"},
		{date: "2025-10-30", wantStart: "2025-10-27", wantEnd: "2025-11-02"},
		{date: "2025-11-02", wantStart: "2025-10-27", wantEnd: "2025-11-02"},
		{date: "2025-11-03", wantStart: "2025-11-03", wantEnd: "2025-11-09"},
		{date: "2024-12-31", wantStart: "2024-12-30", wantEnd: "2025-01-05"},
	}

	for _, tc := range testCases {
		t.Run(tc.date, func(t *testing.T) {
			d, err := ParseDate(tc.date)
			require.NoError(t, err)
			w := z.WeekOf(d)
			assert.Equal(t, tc.wantStart, w.Start.String())
			assert.Equal(t, tc.wantEnd, w.End.String())
		})
	}
}

func TestBoundsAreHalfOpenUTC(t *testing.T) {
	z := Fixed()
	d, err := ParseDate("2025-10-27")
	require.NoError(t, err)

	from, to := z.Bounds(z.WeekOf(d))
	assert.Equal(t, time.Date(2025, 10, 27, 3, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 11, 3, 3, 0, 0, 0, time.UTC), to)
	assert.Equal(t, time.UTC, from.Location())
}

func TestWeekDaysAndPrevious(t *testing.T) {
	z := Fixed()
	d, _ := ParseDate("2025-10-29")
	w := z.WeekOf(d)

	days := w.Days()
	require.Len(t, days, 7)
	assert.Equal(t, "2025-10-27", days[0].String())
	assert.Equal(t, "2025-11-02", days[6].String())

	prev := w.Previous()
	assert.Equal(t, "2025-10-20", prev.Start.String())
	assert.Equal(t, "2025-10-26", prev.End.String())
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("27/10/2025")
	assert.Error(t, err)
}
