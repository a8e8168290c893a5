package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/flashvocab/pkg/models"
)

type fakeStats struct {
	counts models.ProgressCounts
	times  []time.Time
	err    error

	gotDayStart, gotDayEnd, gotWeekStart time.Time
}

func (f *fakeStats) Counts(ctx context.Context, userID string, dayStart, dayEnd, weekStart time.Time) (*models.ProgressCounts, error) {
	f.gotDayStart, f.gotDayEnd, f.gotWeekStart = dayStart, dayEnd, weekStart
	if f.err != nil {
		return nil, f.err
	}
	c := f.counts
	return &c, nil
}

func (f *fakeStats) ReviewTimes(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.times, nil
}

func day(d int) time.Time {
	// Day d of August 2026 at mid-afternoon UTC.
	return time.Date(2026, 8, d, 15, 0, 0, 0, time.UTC)
}

func TestAggregatorCompute(t *testing.T) {
	now := day(31)
	store := &fakeStats{
		counts: models.ProgressCounts{
			Total:      10,
			New:        1,
			Known:      3,
			Unknown:    6,
			Today:      2,
			ThisWeek:   5,
			WordsTotal: 10,
		},
	}
	agg := NewAggregator(store, fixedClock(now), time.UTC)

	stats, err := agg.Compute(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 2, stats.Today)
	assert.Equal(t, 5, stats.ThisWeek)
	// remaining = vocabulary size - known, from the same read.
	assert.Equal(t, 7, stats.Remaining)
	assert.Equal(t, models.StatusBreakdown{New: 1, Known: 3, Unknown: 6}, stats.Breakdown)

	// Day boundaries come from the injected clock and location.
	assert.True(t, store.gotDayStart.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)))
	assert.True(t, store.gotDayEnd.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, store.gotWeekStart.Equal(now.Add(-7*24*time.Hour)))
}

func TestAggregatorRequiresIdentity(t *testing.T) {
	agg := NewAggregator(&fakeStats{}, nil, nil)
	_, err := agg.Compute(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAggregatorStoreFailure(t *testing.T) {
	agg := NewAggregator(&fakeStats{err: errors.New("boom")}, nil, nil)
	_, err := agg.Compute(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrReadFailed)
}

func TestStreakConsecutiveDays(t *testing.T) {
	now := day(31)
	// Activity on D, D-1, D-2, a gap at D-3, activity on D-4.
	store := &fakeStats{times: []time.Time{day(27), day(29), day(30), day(31)}}
	agg := NewAggregator(store, fixedClock(now), time.UTC)

	stats, err := agg.Compute(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Streak.Current)
	assert.Equal(t, 3, stats.Streak.Longest)
	require.NotNil(t, stats.Streak.LastStudyDate)
	assert.Equal(t, 31, stats.Streak.LastStudyDate.Day())
}

func TestStreakNoActivityTodayCountsFromYesterday(t *testing.T) {
	now := day(31)
	store := &fakeStats{times: []time.Time{day(29), day(30)}}
	agg := NewAggregator(store, fixedClock(now), time.UTC)

	stats, err := agg.Compute(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Streak.Current)
	assert.Equal(t, 2, stats.Streak.Longest)
}

func TestStreakBrokenYesterday(t *testing.T) {
	now := day(31)
	store := &fakeStats{times: []time.Time{day(27), day(28)}}
	agg := NewAggregator(store, fixedClock(now), time.UTC)

	stats, err := agg.Compute(context.Background(), "user-1")
	require.NoError(t, err)
	// Last activity two days ago: no current streak, but the longest run
	// in the window is still visible.
	assert.Equal(t, 0, stats.Streak.Current)
	assert.Equal(t, 2, stats.Streak.Longest)
}

func TestStreakEmpty(t *testing.T) {
	agg := NewAggregator(&fakeStats{}, fixedClock(day(31)), time.UTC)

	stats, err := agg.Compute(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Streak.Current)
	assert.Equal(t, 0, stats.Streak.Longest)
	assert.Nil(t, stats.Streak.LastStudyDate)
}

func TestStreakMultipleReviewsSameDay(t *testing.T) {
	now := day(31)
	store := &fakeStats{times: []time.Time{
		day(31), day(31).Add(time.Hour), day(31).Add(2 * time.Hour),
	}}
	agg := NewAggregator(store, fixedClock(now), time.UTC)

	stats, err := agg.Compute(context.Background(), "user-1")
	require.NoError(t, err)
	// Several reviews on one calendar day collapse to a single streak day.
	assert.Equal(t, 1, stats.Streak.Current)
	assert.Equal(t, 1, stats.Streak.Longest)
}
