package domain

// LogEntry is a single logged interaction within one day. Immutable once appended.
type LogEntry struct {
	Time   string // HH:MM, local to the configured zone
	Date   string // YYYY-MM-DD
	Amount int    // millilitres; 0 for skipped entries
	Status Status
}

// Status marks whether the user drank or skipped a reminder.
type Status string

const (
	StatusDrank   Status = "drank"
	StatusSkipped Status = "skipped"
)

// Record is a snapshot of one user's daily progress.
type Record struct {
	DailyNorm  int
	TotalToday int
	TodayLogs  []LogEntry
}

// Remaining returns how many millilitres are left until the daily norm, never negative.
func (r Record) Remaining() int {
	if rem := r.DailyNorm - r.TotalToday; rem > 0 {
		return rem
	}
	return 0
}

// DaySummary is the settlement snapshot submitted to persistence sinks.
type DaySummary struct {
	ChatID int64
	Date   string // YYYY-MM-DD
	Total  int
	Norm   int
	Logs   []LogEntry
}

// PercentOfNorm returns total as a percentage of norm.
func PercentOfNorm(total, norm int) float64 {
	if norm <= 0 {
		return 0
	}
	return float64(total) / float64(norm) * 100
}
