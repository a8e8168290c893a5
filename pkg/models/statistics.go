package models

import "time"

// StatusBreakdown partitions a user's progress records by status. The three
// counters sum to the total number of records; words without a record are
// counted as "new" only in Statistics.Remaining, not here.
type StatusBreakdown struct {
	New     int `json:"new"`
	Known   int `json:"known"`
	Unknown int `json:"unknown"`
}

// Streak describes consecutive-day study activity over a trailing window.
type Streak struct {
	Current       int        `json:"current"`
	Longest       int        `json:"longest"`
	LastStudyDate *time.Time `json:"last_study_date,omitempty"`
}

// ProgressCounts is the raw aggregate the statistics read path produces:
// status totals and windowed review counts for one user plus the vocabulary
// size, all from a single store read so the remaining-words subtraction
// cannot straddle two inconsistent snapshots.
type ProgressCounts struct {
	Total      int `db:"total"`
	New        int `db:"new_count"`
	Known      int `db:"known_count"`
	Unknown    int `db:"unknown_count"`
	Today      int `db:"today_count"`
	ThisWeek   int `db:"week_count"`
	WordsTotal int `db:"words_total"`
}

// Statistics is the dashboard document for one user, derived fresh on each
// request. Remaining always equals the vocabulary size minus the user's
// known-word count.
type Statistics struct {
	Total     int             `json:"total"`
	Today     int             `json:"today"`
	ThisWeek  int             `json:"this_week"`
	Remaining int             `json:"remaining"`
	Breakdown StatusBreakdown `json:"breakdown"`
	Streak    Streak          `json:"streak"`
}
