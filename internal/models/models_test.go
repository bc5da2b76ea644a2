package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

func TestRecordComplete(t *testing.T) {
	testCases := []struct {
		name      string
		elapsed   time.Duration
		minValid  time.Duration
		wantValid bool
	}{
		{"should be valid above the threshold", 400 * time.Second, 300 * time.Second, true},
		{"should be valid at exactly the threshold", 300 * time.Second, 300 * time.Second, true},
		{"should be invalid just below the threshold", 299 * time.Second, 300 * time.Second, false},
		{"should be valid for zero length with zero threshold", 0, 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Record{ID: "r1", StartTime: t0}

			err := r.Complete(t0.Add(tc.elapsed), tc.minValid)

			require.NoError(t, err)
			require.NotNil(t, r.EndTime)
			assert.Equal(t, tc.elapsed, r.Duration)
			assert.Equal(t, tc.wantValid, r.Valid)
			assert.False(t, r.Active())
		})
	}
}

func TestRecordCompleteTwice(t *testing.T) {
	r := &Record{ID: "r1", StartTime: t0}
	require.NoError(t, r.Complete(t0.Add(time.Hour), 0))

	err := r.Complete(t0.Add(2*time.Hour), 0)

	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, time.Hour, r.Duration)
}

func TestRecordElapsed(t *testing.T) {
	r := &Record{StartTime: t0}
	assert.Equal(t, 90*time.Second, r.Elapsed(t0.Add(90*time.Second)))

	require.NoError(t, r.Complete(t0.Add(time.Minute), 0))
	assert.Equal(t, time.Minute, r.Elapsed(t0.Add(time.Hour)))
}

func TestRecordClone(t *testing.T) {
	r := &Record{ID: "r1", StartTime: t0}
	require.NoError(t, r.Complete(t0.Add(time.Minute), 0))

	c := r.Clone()
	*c.EndTime = t0

	assert.Equal(t, t0.Add(time.Minute), *r.EndTime)
	assert.Nil(t, (*Record)(nil).Clone())
}

func TestDisplayColor(t *testing.T) {
	cat := &Category{ColorHex: "#10B981"}

	assert.Equal(t, "#EF4444", (&EventType{CustomColorHex: "#EF4444"}).DisplayColor(cat))
	assert.Equal(t, "#10B981", (&EventType{}).DisplayColor(cat))
	assert.Equal(t, defaultColorHex, (&EventType{}).DisplayColor(nil))
}

func TestSameName(t *testing.T) {
	assert.True(t, SameName("Work", " work "))
	assert.False(t, SameName("Work", "Study"))
}
