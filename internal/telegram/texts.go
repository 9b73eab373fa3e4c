package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/YesAndBack/TakeWaterBot/internal/store"
)

// Reply keyboard button labels.
const (
	btnDrink = "💧 Log water"
	btnStats = "📊 Stats"
	btnNorm  = "⚙️ Change norm"
	btnHelp  = "ℹ️ Help"
)

const (
	welcomeFmt = "Hi, %s! 👋\n\n" +
		"I am a water reminder bot. I will ping you during the day so you " +
		"don't forget to drink.\n\n" +
		"Your daily norm: %d ml.\n\n" +
		"Use the menu buttons:\n" +
		btnDrink + " — log how much you drank\n" +
		btnStats + " — your totals for the last week\n" +
		btnNorm + " — set your own daily norm\n" +
		btnHelp + " — show this message again\n\n" +
		"Have a great day and a healthy water balance! 💧"

	askVolumeText   = "How much water did you drink?"
	askCustomAmount = "Enter the amount in ml (just the number):"
	askCustomNorm   = "Enter your daily norm in ml (just the number):"

	drinkLoggedFmt   = "Nice, logged %d ml.\n\nToday's total: %d ml.\nThat is %.1f%% of your daily norm."
	normMetText      = "🎉 Congratulations! You reached your daily norm!"
	normExceededText = "💪 Wow! You are 20% or more over your norm. Great work!"

	skipAckText = "Okay, I logged that you skipped this one.\n" +
		"Try to drink regularly to keep your water balance! 💧\n" +
		"The next reminder will come on schedule."

	normUpdatedFmt = "Your daily norm is now %d ml."
	currentNormFmt = "Your current daily norm: %d ml.\nPick a new one or enter your own:"

	saveDoneText    = "Your totals were saved to the spreadsheet!"
	saveNothingText = "You have no data to save yet!"

	statsEmptyText = "No water data for the last week yet.\n" +
		"Start drinking and logging it here!"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnDrink),
			tgbotapi.NewKeyboardButton(btnStats),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnNorm),
			tgbotapi.NewKeyboardButton(btnHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func volumeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("150 ml", "amount:150"),
			tgbotapi.NewInlineKeyboardButtonData("200 ml", "amount:200"),
			tgbotapi.NewInlineKeyboardButtonData("250 ml", "amount:250"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("300 ml", "amount:300"),
			tgbotapi.NewInlineKeyboardButtonData("500 ml", "amount:500"),
			tgbotapi.NewInlineKeyboardButtonData("✍️ Other", "amount:custom"),
		),
	)
}

func normKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("1500 ml", "norm:1500"),
			tgbotapi.NewInlineKeyboardButtonData("2000 ml", "norm:2000"),
			tgbotapi.NewInlineKeyboardButtonData("2500 ml", "norm:2500"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("3000 ml", "norm:3000"),
			tgbotapi.NewInlineKeyboardButtonData("✍️ Other", "norm:custom"),
		),
	)
}

func reminderKeyboard(label string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, I drank", "drank:"+label),
			tgbotapi.NewInlineKeyboardButtonData("Not yet", "skip:"+label),
		),
	)
}

// formatStats renders the weekly statistics message.
func formatStats(week []store.DayTotal) string {
	var b strings.Builder
	b.WriteString("📊 Your water intake for the last week:\n\n")

	total := 0
	for _, d := range week {
		emoji := "🟢"
		switch {
		case d.Total < 1000:
			emoji = "🔴"
		case d.Total < 1500:
			emoji = "🟡"
		}
		date := d.Day
		if t, err := time.Parse("2006-01-02", d.Day); err == nil {
			date = t.Format("02.01.2006")
		}
		fmt.Fprintf(&b, "%s %s: %d ml\n", emoji, date, d.Total)
		total += d.Total
	}

	avg := 0
	if len(week) > 0 {
		avg = total / len(week)
	}
	fmt.Fprintf(&b, "\n💧 Week total: %d ml", total)
	fmt.Fprintf(&b, "\n⚖️ Daily average: %d ml", avg)

	switch {
	case avg < 1000:
		b.WriteString("\n\n⚠️ You drink far too little. Try to drink more!")
	case avg < 1500:
		b.WriteString("\n\n🔔 You drink less than recommended. Keep pushing!")
	case avg < 2000:
		b.WriteString("\n\n👍 Not bad! You are getting close to the recommended norm.")
	default:
		b.WriteString("\n\n🏆 Excellent! You keep a healthy water balance.")
	}
	return b.String()
}
