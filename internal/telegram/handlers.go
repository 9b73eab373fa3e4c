package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/YesAndBack/TakeWaterBot/internal/domain"
	"github.com/YesAndBack/TakeWaterBot/internal/settle"
	"github.com/YesAndBack/TakeWaterBot/internal/store"
)

func (r *Router) handleStart(ctx context.Context, chatID int64, firstName string) {
	rec, _ := r.tracker.GetOrInit(chatID)
	r.log.Info("user started", zap.Int64("chatID", chatID))
	r.sendWithMenu(chatID, fmt.Sprintf(welcomeFmt, firstName, rec.DailyNorm))
}

func (r *Router) handleHelp(ctx context.Context, chatID int64, firstName string) {
	rec, _ := r.tracker.GetOrInit(chatID)
	r.sendWithMenu(chatID, fmt.Sprintf(welcomeFmt, firstName, rec.DailyNorm))
}

// --- Drink flow ---

func (r *Router) askVolume(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, askVolumeText)
	msg.ReplyMarkup = volumeKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleAmountCallback(ctx context.Context, chatID int64, value, cbID string) {
	r.answerCallback(cbID)
	if value == "custom" {
		r.setPending(chatID, pendingAmount)
		r.sendText(chatID, askCustomAmount)
		return
	}
	amount, err := strconv.Atoi(value)
	if err != nil {
		r.sendText(chatID, "Something went wrong. Please try again.")
		return
	}
	r.logDrink(ctx, chatID, amount)
}

// logDrink records a drink and sends the completion messages. It also closes a
// pending reminder interaction if this drink answers one.
func (r *Router) logDrink(ctx context.Context, chatID int64, amount int) {
	res, err := r.tracker.RecordDrink(chatID, amount)
	if errors.Is(err, domain.ErrInvalidAmount) {
		r.sendText(chatID, "The amount must be a positive number. Try again.")
		return
	}
	if err != nil {
		r.log.Error("record drink failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Something went wrong. Please try again.")
		return
	}
	if label, ok := r.tracker.TakePending(chatID); ok {
		r.log.Debug("reminder answered", zap.Int64("chatID", chatID), zap.String("label", label))
	}

	r.sendWithMenu(chatID, fmt.Sprintf(drinkLoggedFmt, amount, res.TotalToday, res.Percent))
	if res.NormMet {
		r.sendText(chatID, normMetText)
	} else if res.NormExceeded {
		r.sendText(chatID, normExceededText)
	}
}

// --- Norm flow ---

func (r *Router) handleSetNormCommand(ctx context.Context, chatID int64, text string) {
	args := strings.Fields(text)
	if len(args) < 2 {
		r.askNormPresets(ctx, chatID)
		return
	}
	norm, err := strconv.Atoi(args[1])
	if err != nil {
		r.sendWithMenu(chatID, "Please give the norm as a number, e.g.: /setnorm 2500")
		return
	}
	r.setNorm(chatID, norm)
}

func (r *Router) askNormPresets(ctx context.Context, chatID int64) {
	rec, _ := r.tracker.GetOrInit(chatID)
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(currentNormFmt, rec.DailyNorm))
	msg.ReplyMarkup = normKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleNormCallback(ctx context.Context, chatID int64, value, cbID string) {
	r.answerCallback(cbID)
	if value == "custom" {
		r.setPending(chatID, pendingNorm)
		r.sendText(chatID, askCustomNorm)
		return
	}
	norm, err := strconv.Atoi(value)
	if err != nil {
		r.sendText(chatID, "Something went wrong. Please try again.")
		return
	}
	r.setNorm(chatID, norm)
}

func (r *Router) setNorm(chatID int64, norm int) {
	if err := r.tracker.SetNorm(chatID, norm); err != nil {
		r.sendWithMenu(chatID, "The norm must be a positive number!")
		return
	}
	r.sendWithMenu(chatID, fmt.Sprintf(normUpdatedFmt, norm))
}

// --- Free-form dispatcher (for all "Other" inputs) ---

func (r *Router) handleFreeForm(ctx context.Context, chatID int64, text string) {
	switch r.getPending(chatID) {
	case pendingAmount:
		amount, err := strconv.Atoi(text)
		if err != nil {
			r.sendText(chatID, "Please enter a number (digits only). Try again.")
			return
		}
		r.clearPending(chatID)
		r.logDrink(ctx, chatID, amount)

	case pendingNorm:
		norm, err := strconv.Atoi(text)
		if err != nil {
			r.sendText(chatID, "Please enter a number (digits only). Try again.")
			return
		}
		r.clearPending(chatID)
		r.setNorm(chatID, norm)

	default:
		// No pending flow: ignore free-form message
	}
}

// --- Weekly stats ---

func (r *Router) handleStats(ctx context.Context, chatID int64) {
	today := r.now()
	week, err := r.history.WeekTotals(ctx, chatID, today)
	if err != nil {
		r.log.Error("weekly stats failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendWithMenu(chatID, "Could not load your stats. Please try again later.")
		return
	}

	// Today's progress may not be settled yet; merge it in.
	rec, _ := r.tracker.GetOrInit(chatID)
	todayStr := today.Format("2006-01-02")
	settled := false
	for _, d := range week {
		if d.Day == todayStr {
			settled = true
			break
		}
	}
	if !settled && rec.TotalToday > 0 {
		week = append(week, store.DayTotal{Day: todayStr, Total: rec.TotalToday, Norm: rec.DailyNorm})
	}

	if len(week) == 0 {
		r.sendWithMenu(chatID, statsEmptyText)
		return
	}
	r.sendWithMenu(chatID, formatStats(week))
}

// --- Manual save ---

func (r *Router) handleSave(ctx context.Context, chatID int64) {
	err := r.settler.SaveUser(ctx, chatID)
	switch {
	case errors.Is(err, settle.ErrNothingToSave):
		r.sendWithMenu(chatID, saveNothingText)
	case err != nil:
		r.log.Error("manual save failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendWithMenu(chatID, "Could not save your data: "+err.Error())
	default:
		r.sendWithMenu(chatID, saveDoneText)
	}
}

// --- Reminder responses ---

func (r *Router) handleReminderConfirmed(ctx context.Context, chatID int64, label, cbID string) {
	r.answerCallback(cbID)
	r.tracker.SetPending(chatID, label)
	r.askVolume(chatID)
}

func (r *Router) handleReminderDeclined(ctx context.Context, chatID int64, label, cbID string) {
	r.answerCallback(cbID)
	r.tracker.RecordSkip(chatID, label)
	r.sendWithMenu(chatID, skipAckText)
}
