package settle

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/YesAndBack/TakeWaterBot/internal/domain"
	"github.com/YesAndBack/TakeWaterBot/internal/tracker"
)

type fakeSink struct {
	rows   map[string]domain.DaySummary // keyed chatID|date, emulating an idempotent sink
	failOn map[int64]bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{rows: make(map[string]domain.DaySummary), failOn: make(map[int64]bool)}
}

func (f *fakeSink) Submit(_ context.Context, sum domain.DaySummary) error {
	if f.failOn[sum.ChatID] {
		return errors.New("sink down")
	}
	f.rows[key(sum)] = sum
	return nil
}

func key(sum domain.DaySummary) string {
	return strconv.FormatInt(sum.ChatID, 10) + "|" + sum.Date
}

func newTestTracker() *tracker.Tracker {
	now := func() time.Time { return time.Date(2025, time.July, 10, 23, 50, 0, 0, time.UTC) }
	return tracker.New(2000, now, zap.NewNop())
}

func TestRunSettlesUsersWithData(t *testing.T) {
	tr := newTestTracker()
	if _, err := tr.RecordDrink(1, 1500); err != nil {
		t.Fatal(err)
	}
	tr.RecordSkip(2, "15:00") // zero total: skipped by settlement
	if _, err := tr.RecordDrink(3, 700); err != nil {
		t.Fatal(err)
	}

	sink := newFakeSink()
	New(tr, sink, zap.NewNop()).Run(context.Background())

	if len(sink.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(sink.rows))
	}
}

func TestRunIsolatesSinkFailures(t *testing.T) {
	tr := newTestTracker()
	for _, id := range []int64{1, 2, 3} {
		if _, err := tr.RecordDrink(id, 500); err != nil {
			t.Fatal(err)
		}
	}

	sink := newFakeSink()
	sink.failOn[2] = true
	New(tr, sink, zap.NewNop()).Run(context.Background())

	if len(sink.rows) != 2 {
		t.Fatalf("rows = %d, want 2 despite one failure", len(sink.rows))
	}
}

func TestSettlementIsIdempotentAndKeepsState(t *testing.T) {
	tr := newTestTracker()
	if _, err := tr.RecordDrink(1, 1200); err != nil {
		t.Fatal(err)
	}

	sink := newFakeSink()
	s := New(tr, sink, zap.NewNop())
	s.Run(context.Background())
	s.Run(context.Background()) // same day, same totals

	if len(sink.rows) != 1 {
		t.Fatalf("rows = %d, want 1 logical row after double settlement", len(sink.rows))
	}

	// User logs more after settlement: state survived, and a re-run updates the row.
	if _, err := tr.RecordDrink(1, 300); err != nil {
		t.Fatal(err)
	}
	s.Run(context.Background())
	if len(sink.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(sink.rows))
	}
	for _, row := range sink.rows {
		if row.Total != 1500 {
			t.Fatalf("row total = %d, want 1500", row.Total)
		}
	}
}

func TestSaveUser(t *testing.T) {
	tr := newTestTracker()
	sink := newFakeSink()
	s := New(tr, sink, zap.NewNop())

	if err := s.SaveUser(context.Background(), 9); !errors.Is(err, ErrNothingToSave) {
		t.Fatalf("SaveUser with no data: %v, want ErrNothingToSave", err)
	}

	if _, err := tr.RecordDrink(9, 400); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveUser(context.Background(), 9); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if len(sink.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(sink.rows))
	}
}

func TestMultiSinkContinuesPastFailure(t *testing.T) {
	good := newFakeSink()
	bad := newFakeSink()
	bad.failOn[1] = true

	m := MultiSink{bad, good}
	sum := domain.DaySummary{ChatID: 1, Date: "2025-07-10", Total: 900, Norm: 2000}
	if err := m.Submit(context.Background(), sum); err == nil {
		t.Fatal("expected joined error from failing sink")
	}
	if len(good.rows) != 1 {
		t.Fatal("second sink must still receive the submission")
	}
}
