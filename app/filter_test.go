package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itimeapp/itime/internal/timeutil"
	"github.com/itimeapp/itime/store"
)

var now = time.Date(2025, 1, 8, 15, 30, 0, 0, time.Local)

func TestRecordQueryDefaultsToSevenDays(t *testing.T) {
	q, err := recordQuery(filterOptions{}, now)
	require.NoError(t, err)

	since, until := timeutil.Period7Days.Bounds(now)

	assert.Equal(t, since, q.Since)
	assert.Equal(t, until, q.Until)
	assert.Equal(t, store.SortStartDesc, q.Sort)
}

func TestRecordQueryPeriod(t *testing.T) {
	q, err := recordQuery(filterOptions{Period: "yesterday", Limit: 5}, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local), q.Since)
	assert.Equal(t, 7, q.Until.Day())
	assert.Equal(t, 5, q.Limit)
}

func TestRecordQueryAllTime(t *testing.T) {
	q, err := recordQuery(filterOptions{Period: "all-time"}, now)
	require.NoError(t, err)

	assert.True(t, q.Since.IsZero())
}

func TestRecordQueryInvalidPeriod(t *testing.T) {
	_, err := recordQuery(filterOptions{Period: "fortnight"}, now)

	assert.ErrorIs(t, err, errInvalidPeriod)
}

func TestRecordQueryRelativeSince(t *testing.T) {
	q, err := recordQuery(filterOptions{Since: "2 hours ago", Period: "today"}, now)
	require.NoError(t, err)

	assert.WithinDuration(t, now.Add(-2*time.Hour), q.Since, time.Minute)
	assert.Equal(t, now, q.Until)
}

func TestRecordQueryBadDate(t *testing.T) {
	_, err := recordQuery(filterOptions{Since: "not a date at all"}, now)

	assert.ErrorIs(t, err, errInvalidDate)
}

func TestRecordQueryRange(t *testing.T) {
	_, err := recordQuery(filterOptions{
		Since: "2025-01-08 12:00",
		Until: "2025-01-08 10:00",
	}, now)

	assert.ErrorIs(t, err, errInvalidDateRange)
}
