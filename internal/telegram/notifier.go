package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

var htmlStripper = strings.NewReplacer("<b>", "", "</b>", "", "<i>", "", "</i>", "")

// SendReminder delivers a scheduled reminder with confirm/decline buttons.
// If the HTML-formatted send fails, it retries once with formatting stripped;
// only two consecutive failures count as a dispatch failure for this user.
// This makes Router satisfy reminder.Notifier.
func (r *Router) SendReminder(chatID int64, text string, label string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = reminderKeyboard(label)
	_, err := r.bot.Send(msg)
	if err == nil {
		return nil
	}
	r.log.Warn("formatted reminder failed, retrying plain",
		zap.Int64("chatID", chatID),
		zap.Error(err),
	)

	plain := tgbotapi.NewMessage(chatID, htmlStripper.Replace(text))
	plain.ReplyMarkup = reminderKeyboard(label)
	if _, err := r.bot.Send(plain); err != nil {
		return fmt.Errorf("plain-text retry failed: %w", err)
	}
	return nil
}
