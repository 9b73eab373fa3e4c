package telegram

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/YesAndBack/TakeWaterBot/internal/settle"
	"github.com/YesAndBack/TakeWaterBot/internal/store"
	"github.com/YesAndBack/TakeWaterBot/internal/tracker"
)

// Pending state keys used in conversational flows.
const (
	pendingAmount = "await_amount_text"
	pendingNorm   = "await_norm_text"
)

// Router wires Telegram updates to handlers and holds minimal in-memory state.
type Router struct {
	bot     *tgbotapi.BotAPI
	log     *zap.Logger
	tracker *tracker.Tracker
	history *store.History
	settler *settle.Settler
	now     func() time.Time
	state   map[int64]string // chatID -> pending state
	mu      sync.RWMutex
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, t *tracker.Tracker, h *store.History, s *settle.Settler, now func() time.Time) *Router {
	return &Router{
		bot:     bot,
		log:     log,
		tracker: t,
		history: h,
		settler: s,
		now:     now,
		state:   make(map[int64]string),
	}
}

// setPending sets a pending state for a chat (non-persistent, in-memory).
func (r *Router) setPending(chatID int64, s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[chatID] = s
}

// getPending returns current pending state for a chat.
func (r *Router) getPending(chatID int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state[chatID]
}

// clearPending clears a pending state for a chat.
func (r *Router) clearPending(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, chatID)
}

// HandleUpdate routes a single update to appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	// Text messages
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)
		firstName := ""
		if msg.From != nil {
			firstName = msg.From.FirstName
		}

		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, chatID, firstName)
		case strings.HasPrefix(text, "/drink"), text == btnDrink:
			r.askVolume(chatID)
		case strings.HasPrefix(text, "/setnorm"):
			r.handleSetNormCommand(ctx, chatID, text)
		case text == btnNorm:
			r.askNormPresets(ctx, chatID)
		case strings.HasPrefix(text, "/stats"), text == btnStats:
			r.handleStats(ctx, chatID)
		case strings.HasPrefix(text, "/save"):
			r.handleSave(ctx, chatID)
		case strings.HasPrefix(text, "/help"), text == btnHelp:
			r.handleHelp(ctx, chatID, firstName)
		default:
			// Free-form text used in "Other" flows (amount/norm entry)
			r.handleFreeForm(ctx, chatID, text)
		}
		return
	}

	// Callback queries (inline buttons)
	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		data := cb.Data
		chatID := cb.Message.Chat.ID

		switch {
		case strings.HasPrefix(data, "amount:"):
			r.handleAmountCallback(ctx, chatID, strings.TrimPrefix(data, "amount:"), cb.ID)
		case strings.HasPrefix(data, "norm:"):
			r.handleNormCallback(ctx, chatID, strings.TrimPrefix(data, "norm:"), cb.ID)
		case strings.HasPrefix(data, "drank:"):
			r.handleReminderConfirmed(ctx, chatID, strings.TrimPrefix(data, "drank:"), cb.ID)
		case strings.HasPrefix(data, "skip:"):
			r.handleReminderDeclined(ctx, chatID, strings.TrimPrefix(data, "skip:"), cb.ID)
		default:
			// Unknown callback — ignore silently
		}
		return
	}
}

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	_, _ = r.bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) sendWithMenu(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainMenuKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) answerCallback(id string) {
	_, _ = r.bot.Request(tgbotapi.NewCallback(id, ""))
}
