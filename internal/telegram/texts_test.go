package telegram

import (
	"strings"
	"testing"

	"github.com/YesAndBack/TakeWaterBot/internal/store"
)

func TestFormatStats(t *testing.T) {
	week := []store.DayTotal{
		{Day: "2025-07-08", Total: 800, Norm: 2000},
		{Day: "2025-07-09", Total: 1400, Norm: 2000},
		{Day: "2025-07-10", Total: 2100, Norm: 2000},
	}
	text := formatStats(week)

	for _, want := range []string{
		"🔴 08.07.2025: 800 ml",
		"🟡 09.07.2025: 1400 ml",
		"🟢 10.07.2025: 2100 ml",
		"Week total: 4300 ml",
		"Daily average: 1433 ml",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("stats missing %q:\n%s", want, text)
		}
	}
	// avg 1433 lands in the "less than recommended" band
	if !strings.Contains(text, "less than recommended") {
		t.Errorf("unexpected assessment band:\n%s", text)
	}
}

func TestFormatStatsAssessmentBands(t *testing.T) {
	cases := []struct {
		total int
		want  string
	}{
		{900, "far too little"},
		{1400, "less than recommended"},
		{1900, "Not bad"},
		{2400, "Excellent"},
	}
	for _, tc := range cases {
		text := formatStats([]store.DayTotal{{Day: "2025-07-10", Total: tc.total, Norm: 2000}})
		if !strings.Contains(text, tc.want) {
			t.Errorf("total %d: expected band %q in:\n%s", tc.total, tc.want, text)
		}
	}
}
