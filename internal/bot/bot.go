// Package bot is the Telegram presentation surface. It drives the same
// review sessions as the HTTP API, one session per chat, with inline
// keyboards standing in for the keyboard shortcuts of a browser client.
package bot

import (
	"context"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/flashvocab/internal/review"
	"github.com/example/flashvocab/internal/server"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Bot represents the Telegram review surface.
type Bot struct {
	api        *tgbotapi.BotAPI
	selector   *review.Selector
	recorder   *review.Recorder
	aggregator *review.Aggregator
	sessions   *server.SessionManager
	updates    tgbotapi.UpdatesChannel
}

// New creates a new bot instance
func New(token string, selector *review.Selector, recorder *review.Recorder, aggregator *review.Aggregator, sessions *server.SessionManager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:        api,
		selector:   selector,
		recorder:   recorder,
		aggregator: aggregator,
		sessions:   sessions,
	}, nil
}

// Start begins processing updates until the context is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	b.updates = b.api.GetUpdatesChan(u)

	log.Printf("Telegram bot authorized as @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-b.updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// userID derives the opaque identity for a chat. Telegram users are always
// authenticated; there is no guest path on this surface.
func userID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

// sessionKey is the registry key for a chat's review session.
func sessionKey(chatID int64) string {
	return "tg-session:" + strconv.FormatInt(chatID, 10)
}

// session returns the chat's review session, creating and starting a fresh
// one when the chat has none (or its previous one expired).
func (b *Bot) session(ctx context.Context, chatID int64) *review.Session {
	key := sessionKey(chatID)
	if session, ok := b.sessions.Get(key); ok {
		return session
	}
	session := review.NewSession(b.selector, b.recorder, userID(chatID))
	b.sessions.PutWithID(key, session)
	if err := session.Start(ctx); err != nil {
		log.Printf("failed to start session for chat %d: %v", chatID, err)
	}
	return session
}
