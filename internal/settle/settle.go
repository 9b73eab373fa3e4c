package settle

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/YesAndBack/TakeWaterBot/internal/domain"
	"github.com/YesAndBack/TakeWaterBot/internal/tracker"
)

// Sink persists one user's daily totals. Submitting the same (user, date) twice
// must update the earlier row, not append a duplicate.
type Sink interface {
	Submit(ctx context.Context, sum domain.DaySummary) error
}

// ErrNothingToSave is returned by SaveUser when the user has no logged data today.
var ErrNothingToSave = errors.New("nothing to save for today")

// Settler submits accumulated daily totals to the persistence sink. It never
// clears tracker state; the next-day rollover does.
type Settler struct {
	tracker *tracker.Tracker
	sink    Sink
	log     *zap.Logger
}

func New(t *tracker.Tracker, sink Sink, log *zap.Logger) *Settler {
	return &Settler{tracker: t, sink: sink, log: log}
}

// Run settles every user with data today. Per-user sink failures are logged and
// skipped without retry; the next run or a manual save is the recovery path.
func (s *Settler) Run(ctx context.Context) {
	sums := s.tracker.Summaries()
	s.log.Info("daily settlement", zap.Int("users", len(sums)))

	for _, sum := range sums {
		if err := s.sink.Submit(ctx, sum); err != nil {
			s.log.Error("settlement failed",
				zap.Int64("chatID", sum.ChatID),
				zap.String("date", sum.Date),
				zap.Error(err),
			)
			continue
		}
		s.log.Info("settled",
			zap.Int64("chatID", sum.ChatID),
			zap.String("date", sum.Date),
			zap.Int("total", sum.Total),
		)
	}
}

// SaveUser settles a single user on demand. The sink's idempotency makes a
// repeat of the scheduled settlement harmless.
func (s *Settler) SaveUser(ctx context.Context, chatID int64) error {
	sum, ok := s.tracker.SummaryFor(chatID)
	if !ok {
		return ErrNothingToSave
	}
	return s.sink.Submit(ctx, sum)
}

// MultiSink submits to every sink, continuing past failures and returning
// them joined.
type MultiSink []Sink

func (m MultiSink) Submit(ctx context.Context, sum domain.DaySummary) error {
	var errs []error
	for _, s := range m {
		if err := s.Submit(ctx, sum); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
