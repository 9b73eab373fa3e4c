package scheduler

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/YesAndBack/TakeWaterBot/internal/domain"
)

func TestRegisterReplacesSameLabel(t *testing.T) {
	s := New(time.UTC, zap.NewNop())

	if err := s.Register("15:00", domain.Clock{Hour: 15}, func() {}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := s.Register("15:00", domain.Clock{Hour: 16}, func() {}); err != nil {
		t.Fatalf("second register: %v", err)
	}

	if got := len(s.cron.Entries()); got != 1 {
		t.Fatalf("cron entries = %d, want 1 after re-registration", got)
	}
	if got := s.Labels(); len(got) != 1 || got[0] != "15:00" {
		t.Fatalf("labels = %v", got)
	}

	// The surviving entry is the replacement, firing at 16:00.
	next := s.cron.Entries()[0].Schedule.Next(time.Date(2025, time.July, 10, 12, 0, 0, 0, time.UTC))
	if next.Hour() != 16 || next.Minute() != 0 {
		t.Fatalf("next fire = %v, want 16:00", next)
	}
}

func TestRegisterDistinctLabels(t *testing.T) {
	s := New(time.UTC, zap.NewNop())
	times := []string{"10:00", "12:00", "15:00", "18:00", "21:00"}
	for _, ts := range times {
		c, err := domain.ParseClock(ts)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Register(ts, c, func() {}); err != nil {
			t.Fatalf("register %s: %v", ts, err)
		}
	}
	if got := len(s.cron.Entries()); got != len(times) {
		t.Fatalf("cron entries = %d, want %d", got, len(times))
	}
}

func TestFiresInConfiguredZone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Almaty")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	s := New(loc, zap.NewNop())
	if err := s.Register("23:50", domain.Clock{Hour: 23, Minute: 50}, func() {}); err != nil {
		t.Fatal(err)
	}

	// 20:00 local on 2025-07-10 → next fire the same local day at 23:50.
	now := time.Date(2025, time.July, 10, 20, 0, 0, 0, loc)
	next := s.cron.Entries()[0].Schedule.Next(now).In(loc)
	if next.Day() != 10 || next.Hour() != 23 || next.Minute() != 50 {
		t.Fatalf("next fire = %v, want 2025-07-10 23:50 local", next)
	}
}
