package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/flashvocab/internal/review"
	"github.com/example/flashvocab/pkg/models"
)

// Callback data for the review keyboard.
const (
	callbackReveal  = "reveal"
	callbackKnown   = "known"
	callbackUnknown = "unknown"
	callbackSkip    = "skip"
	callbackRetry   = "retry"
)

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.send(msg.Chat.ID,
			"Welcome! Use /review to practice vocabulary and /stats to see your progress.")
	case "review":
		// A fresh /review always restarts the loop for this chat.
		b.sessions.Remove(sessionKey(msg.Chat.ID))
		session := b.session(ctx, msg.Chat.ID)
		b.sendState(msg.Chat.ID, session.State())
	case "stats":
		b.sendStats(ctx, msg.Chat.ID)
	default:
		b.send(msg.Chat.ID, "Unknown command. Try /review or /stats.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	session := b.session(ctx, chatID)

	var err error
	switch query.Data {
	case callbackReveal:
		err = session.Reveal()
	case callbackKnown:
		err = session.Decide(ctx, models.StatusKnown)
	case callbackUnknown:
		err = session.Decide(ctx, models.StatusUnknown)
	case callbackSkip:
		err = session.Skip(ctx)
	case callbackRetry:
		err = session.Retry(ctx)
	}

	// Busy and out-of-phase taps come from stale keyboards; acknowledge and
	// drop them without re-rendering.
	if errors.Is(err, review.ErrSessionBusy) || errors.Is(err, review.ErrInvalidTransition) {
		b.answerCallback(query.ID, "One moment...")
		return
	}
	b.answerCallback(query.ID, "")

	b.editState(chatID, query.Message.MessageID, session.State())
}

// sendState renders a session snapshot as a new message.
func (b *Bot) sendState(chatID int64, state review.Snapshot) {
	text, keyboard := renderState(state)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("failed to send message to chat %d: %v", chatID, err)
	}
}

// editState re-renders a session snapshot in place of the previous card.
func (b *Bot) editState(chatID int64, messageID int, state review.Snapshot) {
	text, keyboard := renderState(state)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = &keyboard
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("failed to edit message in chat %d: %v", chatID, err)
	}
}

// renderState maps a snapshot to the card text and its keyboard.
func renderState(state review.Snapshot) (string, tgbotapi.InlineKeyboardMarkup) {
	switch state.Phase {
	case review.PhaseHidden:
		return fmt.Sprintf("📖 %s", state.Word.Term), createKeyboard([][]MenuButton{
			{{Text: "Show translation", CallbackData: callbackReveal}},
			{{Text: "Skip", CallbackData: callbackSkip}},
		})
	case review.PhaseRevealed:
		text := fmt.Sprintf("📖 %s\n\n➡️ %s", state.Word.Term, state.Word.Translation)
		if state.Word.Example != "" {
			text += fmt.Sprintf("\n\n_%s_", state.Word.Example)
		}
		return text, createKeyboard([][]MenuButton{
			{
				{Text: "✅ I knew it", CallbackData: callbackKnown},
				{Text: "❌ Didn't know", CallbackData: callbackUnknown},
			},
			{{Text: "Skip", CallbackData: callbackSkip}},
		})
	case review.PhaseError:
		text := "Something went wrong: " + state.Error
		if state.Error == review.ErrNoWordsAvailable.Error() {
			text = "Nothing to review right now."
		}
		return text, createKeyboard([][]MenuButton{
			{{Text: "Retry", CallbackData: callbackRetry}},
		})
	default:
		return "Loading...", tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	}
}

func (b *Bot) sendStats(ctx context.Context, chatID int64) {
	stats, err := b.aggregator.Compute(ctx, userID(chatID))
	if err != nil {
		b.send(chatID, "Could not load your statistics, please try again.")
		return
	}

	text := fmt.Sprintf(
		"📊 Your progress\n\nReviewed: %d words\nToday: %d\nLast 7 days: %d\nLeft to learn: %d\n\nKnown: %d  Unknown: %d\nStreak: %d day(s), best %d",
		stats.Total, stats.Today, stats.ThisWeek, stats.Remaining,
		stats.Breakdown.Known, stats.Breakdown.Unknown,
		stats.Streak.Current, stats.Streak.Longest,
	)
	b.send(chatID, text)
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("failed to send message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.Printf("failed to answer callback: %v", err)
	}
}
