package review

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/flashvocab/pkg/models"
)

// Streaks look back this many calendar days, today included.
const streakWindowDays = 30

// StatisticsStore is the read side the aggregator consults. Counts must
// come from a single store read (see models.ProgressCounts).
type StatisticsStore interface {
	Counts(ctx context.Context, userID string, dayStart, dayEnd, weekStart time.Time) (*models.ProgressCounts, error)
	ReviewTimes(ctx context.Context, userID string, since time.Time) ([]time.Time, error)
}

// Aggregator derives the statistics dashboard for a user. Every call
// recomputes from the store; nothing is cached. The clock and timezone are
// injected so "today" means the same thing on every call site.
type Aggregator struct {
	stats StatisticsStore
	now   func() time.Time
	loc   *time.Location
}

// NewAggregator creates an aggregator. now may be nil for wall-clock time,
// loc may be nil for UTC day boundaries.
func NewAggregator(stats StatisticsStore, now func() time.Time, loc *time.Location) *Aggregator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{stats: stats, now: now, loc: loc}
}

// Compute returns the user's statistics: total reviewed words, reviews
// falling on the current calendar day, reviews in the rolling 7-day window,
// words remaining to learn, the status breakdown, and the study streak.
func (a *Aggregator) Compute(ctx context.Context, userID string) (*models.Statistics, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	now := a.now().In(a.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	weekStart := now.Add(-7 * 24 * time.Hour)

	counts, err := a.stats.Counts(ctx, userID, dayStart, dayEnd, weekStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	streakStart := dayStart.AddDate(0, 0, -(streakWindowDays - 1))
	times, err := a.stats.ReviewTimes(ctx, userID, streakStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	return &models.Statistics{
		Total:     counts.Total,
		Today:     counts.Today,
		ThisWeek:  counts.ThisWeek,
		Remaining: counts.WordsTotal - counts.Known,
		Breakdown: models.StatusBreakdown{
			New:     counts.New,
			Known:   counts.Known,
			Unknown: counts.Unknown,
		},
		Streak: deriveStreak(times, now, a.loc),
	}, nil
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func toCivil(t time.Time, loc *time.Location) civilDate {
	t = t.In(loc)
	return civilDate{t.Year(), t.Month(), t.Day()}
}

func (d civilDate) time(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

// deriveStreak reduces review timestamps to distinct calendar dates and
// measures consecutive-day runs. The current streak ends today, or
// yesterday when there is no activity yet today.
func deriveStreak(times []time.Time, now time.Time, loc *time.Location) models.Streak {
	if len(times) == 0 {
		return models.Streak{}
	}

	seen := make(map[civilDate]struct{}, len(times))
	for _, t := range times {
		seen[toCivil(t, loc)] = struct{}{}
	}

	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d.time(loc))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	longest, run := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i].Sub(dates[i-1]) == 24*time.Hour || dates[i].Equal(dates[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := toCivil(now, loc)
	anchor := today.time(loc)
	if _, ok := seen[today]; !ok {
		anchor = anchor.AddDate(0, 0, -1)
	}
	current := 0
	for {
		if _, ok := seen[toCivil(anchor, loc)]; !ok {
			break
		}
		current++
		anchor = anchor.AddDate(0, 0, -1)
	}

	last := dates[len(dates)-1]
	return models.Streak{Current: current, Longest: longest, LastStudyDate: &last}
}
