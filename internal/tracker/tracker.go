package tracker

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/YesAndBack/TakeWaterBot/internal/domain"
)

// Tracker owns all per-user daily progress. Records are created lazily on first
// access and rolled over to a fresh day the first time they are touched on a new
// calendar date; they are never destroyed.
type Tracker struct {
	mu          sync.Mutex
	records     map[int64]*record
	defaultNorm int
	now         func() time.Time
	log         *zap.Logger
}

// record is the mutable per-user state. All access goes through rec.mu so that
// overlapping interactions, dispatch and settlement cannot lose updates.
type record struct {
	mu         sync.Mutex
	dailyNorm  int
	totalToday int
	todayLogs  []domain.LogEntry

	// pending reminder label, kept until the user responds
	pending    string
	hasPending bool
}

// DrinkResult reports the outcome of one logged drink.
type DrinkResult struct {
	TotalToday int
	Percent    float64
	// NormMet is set when this drink moved the total into [100%, 120%) of the norm.
	NormMet bool
	// NormExceeded is set when this drink moved the total to 120% of the norm or above.
	NormExceeded bool
}

// New creates a Tracker. The now function supplies the current time in the
// configured zone; tests inject a fake clock here.
func New(defaultNorm int, now func() time.Time, log *zap.Logger) *Tracker {
	return &Tracker{
		records:     make(map[int64]*record),
		defaultNorm: defaultNorm,
		now:         now,
		log:         log,
	}
}

func (t *Tracker) get(chatID int64) *record {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[chatID]
	if !ok {
		rec = &record{dailyNorm: t.defaultNorm}
		t.records[chatID] = rec
	}
	return rec
}

// rollover discards the previous day's logs if the record's last entry is dated
// before today. Caller must hold rec.mu. Returns true when stale data was cleared.
func (t *Tracker) rollover(rec *record) bool {
	today := t.now().Format("2006-01-02")
	if len(rec.todayLogs) == 0 {
		return false
	}
	last := rec.todayLogs[len(rec.todayLogs)-1]
	if last.Date == today {
		return false
	}
	rec.todayLogs = nil
	rec.totalToday = 0
	return true
}

// GetOrInit returns a snapshot of the user's record, creating it with defaults if
// absent. The second result reports whether a day rollover happened on this access.
func (t *Tracker) GetOrInit(chatID int64) (domain.Record, bool) {
	rec := t.get(chatID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rolled := t.rollover(rec)
	if rolled {
		t.log.Debug("day rolled over", zap.Int64("chatID", chatID))
	}
	return snapshot(rec), rolled
}

func snapshot(rec *record) domain.Record {
	logs := make([]domain.LogEntry, len(rec.todayLogs))
	copy(logs, rec.todayLogs)
	return domain.Record{
		DailyNorm:  rec.dailyNorm,
		TotalToday: rec.totalToday,
		TodayLogs:  logs,
	}
}

// RecordDrink appends a drank entry with the current time and date and updates the
// running total. The congratulation flags fire only when this drink crosses the
// corresponding band boundary, so a user is congratulated once per day per band.
func (t *Tracker) RecordDrink(chatID int64, amount int) (DrinkResult, error) {
	if amount <= 0 {
		return DrinkResult{}, domain.ErrInvalidAmount
	}

	rec := t.get(chatID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	t.rollover(rec)

	now := t.now()
	rec.todayLogs = append(rec.todayLogs, domain.LogEntry{
		Time:   now.Format("15:04"),
		Date:   now.Format("2006-01-02"),
		Amount: amount,
		Status: domain.StatusDrank,
	})
	prev := domain.PercentOfNorm(rec.totalToday, rec.dailyNorm)
	rec.totalToday += amount
	pct := domain.PercentOfNorm(rec.totalToday, rec.dailyNorm)

	return DrinkResult{
		TotalToday:   rec.totalToday,
		Percent:      pct,
		NormMet:      prev < 100 && pct >= 100 && pct < 120,
		NormExceeded: prev < 120 && pct >= 120,
	}, nil
}

// RecordSkip appends a skipped entry for the given reminder label. The total is
// unaffected.
func (t *Tracker) RecordSkip(chatID int64, label string) {
	rec := t.get(chatID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	t.rollover(rec)

	rec.todayLogs = append(rec.todayLogs, domain.LogEntry{
		Time:   label,
		Date:   t.now().Format("2006-01-02"),
		Amount: 0,
		Status: domain.StatusSkipped,
	})
}

// SetNorm replaces the user's daily norm.
func (t *Tracker) SetNorm(chatID int64, norm int) error {
	if norm <= 0 {
		return domain.ErrInvalidNorm
	}
	rec := t.get(chatID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	t.rollover(rec)
	rec.dailyNorm = norm
	return nil
}

// SetPending remembers which reminder the user is answering. It survives any
// number of unrelated interactions until TakePending is called.
func (t *Tracker) SetPending(chatID int64, label string) {
	rec := t.get(chatID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.pending = label
	rec.hasPending = true
}

// TakePending returns and clears the pending reminder label, if any.
func (t *Tracker) TakePending(chatID int64) (string, bool) {
	rec := t.get(chatID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if !rec.hasPending {
		return "", false
	}
	label := rec.pending
	rec.pending = ""
	rec.hasPending = false
	return label, true
}

// Chats returns a snapshot of all known chat IDs, sorted for determinism.
// Users added after the snapshot are picked up on the next dispatch.
func (t *Tracker) Chats() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]int64, 0, len(t.records))
	for id := range t.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Summaries returns a settlement snapshot for every user who logged anything
// today. State is not cleared; the next-day rollover does that lazily.
func (t *Tracker) Summaries() []domain.DaySummary {
	var out []domain.DaySummary
	for _, chatID := range t.Chats() {
		if sum, ok := t.SummaryFor(chatID); ok {
			out = append(out, sum)
		}
	}
	return out
}

// SummaryFor returns today's settlement snapshot for one user, or false when
// there is nothing to submit.
func (t *Tracker) SummaryFor(chatID int64) (domain.DaySummary, bool) {
	rec := t.get(chatID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	t.rollover(rec)

	if len(rec.todayLogs) == 0 || rec.totalToday <= 0 {
		return domain.DaySummary{}, false
	}
	snap := snapshot(rec)
	return domain.DaySummary{
		ChatID: chatID,
		Date:   t.now().Format("2006-01-02"),
		Total:  snap.TotalToday,
		Norm:   snap.DailyNorm,
		Logs:   snap.TodayLogs,
	}, true
}
