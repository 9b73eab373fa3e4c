package reminder

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/YesAndBack/TakeWaterBot/internal/domain"
	"github.com/YesAndBack/TakeWaterBot/internal/tracker"
)

// Notifier is the minimal contract the dispatcher needs to reach a user.
// The implementation owns formatting and its fallback; a returned error means
// the user could not be reached at all.
type Notifier interface {
	SendReminder(chatID int64, text string, label string) error
}

// Dispatcher sends a scheduled reminder to every known user.
type Dispatcher struct {
	tracker  *tracker.Tracker
	notifier Notifier
	log      *zap.Logger
}

func NewDispatcher(t *tracker.Tracker, n Notifier, log *zap.Logger) *Dispatcher {
	return &Dispatcher{tracker: t, notifier: n, log: log}
}

// Run dispatches the reminder labelled with its trigger time to all known
// users. One user's failure is logged and does not affect the rest.
func (d *Dispatcher) Run(label string) {
	chats := d.tracker.Chats()
	if len(chats) == 0 {
		d.log.Warn("no users to remind", zap.String("label", label))
		return
	}
	d.log.Info("dispatching reminders", zap.String("label", label), zap.Int("users", len(chats)))

	for _, chatID := range chats {
		rec, _ := d.tracker.GetOrInit(chatID)
		if err := d.notifier.SendReminder(chatID, composeReminder(label, rec), label); err != nil {
			d.log.Error("reminder send failed",
				zap.Int64("chatID", chatID),
				zap.String("label", label),
				zap.Error(err),
			)
			continue
		}
		d.log.Debug("reminder sent", zap.Int64("chatID", chatID), zap.String("label", label))
	}
}

// composeReminder builds the reminder text. Sends only read state; they never
// mutate it.
func composeReminder(label string, rec domain.Record) string {
	text := fmt.Sprintf("💧 <b>Time to drink water!</b>\n\nIt is now %s.\n\n", label)
	if remaining := rec.Remaining(); remaining > 0 {
		text += fmt.Sprintf("So far today you have had %d ml.\n", rec.TotalToday)
		text += fmt.Sprintf("%d ml left to reach your norm.\n\n", remaining)
	} else {
		text += fmt.Sprintf("Great job, you have already reached your daily norm: %d ml.\n\n", rec.TotalToday)
	}
	text += "Stay hydrated! Did you drink some water?"
	return text
}
