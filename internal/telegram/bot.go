// Package telegram adapts the interaction engine to a Telegram bot.
// Updates are polled and fanned out to a small worker pool so one slow
// LLM call does not stall every player.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/narralabs/narramancer/internal/engine"
)

const (
	welcomeText = "🧙 Welcome to Narramancer!\n\n" +
		"I am your game master. Tell me what your hero does and I will " +
		"narrate what happens next. When fate must decide, I will ask " +
		"you to throw the dice."

	aboutText = "Narramancer is an interactive fantasy adventure. " +
		"Describe your actions in plain words. Watch your HP and gold, " +
		"and press the dice button when a roll is called for."

	createHeroText = "⚔️ A new adventure begins!\n\n" +
		"Tell me about your hero: a name, a calling (warrior, rogue, " +
		"mage...), and a line or two of backstory. I will take it from " +
		"there."

	helpText = "Commands:\n" +
		"/start - introduction\n" +
		"/new - start a fresh adventure\n" +
		"/help - this message\n\n" +
		"Anything else you type is what your character does."
)

// Bot polls Telegram for player messages and drives the engine.
type Bot struct {
	api     *tgbotapi.BotAPI
	engine  *engine.Engine
	logger  *slog.Logger
	workers int

	cancelPolling context.CancelFunc
}

func New(token string, eng *engine.Engine, logger *slog.Logger, workers int) (*Bot, error) {
	if eng == nil {
		return nil, errors.New("engine is nil")
	}
	if workers <= 0 {
		workers = 5
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth failed: %w", err)
	}

	return &Bot{
		api:     api,
		engine:  eng,
		logger:  logger,
		workers: workers,
	}, nil
}

// StartPolling blocks until ctx is cancelled or StopPolling is called.
func (b *Bot) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	b.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := b.handleUpdate(ctx, up); err != nil {
						b.logger.Error("Update failed", "worker", id, "error", err)
					}
				}
			}
		}(i)
	}

	b.logger.Info("Telegram polling started", "bot", b.api.Self.UserName, "workers", b.workers)

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (b *Bot) StopPolling() {
	if b.cancelPolling != nil {
		b.cancelPolling()
	}
}

// sessionID maps a Telegram chat to a stable engine session.
func sessionID(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return b.handleCallback(ctx, update.CallbackQuery)
	}

	if update.Message == nil || update.Message.Text == "" {
		return nil
	}
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	switch {
	case text == "/start":
		return b.sendStartMenu(chatID, welcomeText)
	case text == "/new":
		return b.newGame(ctx, chatID)
	case text == "/help":
		return b.send(chatID, helpText)
	case strings.HasPrefix(text, "/"):
		return b.send(chatID, "Unknown command. Try /help.")
	default:
		return b.playerTurn(ctx, chatID, text)
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.Message == nil {
		return nil
	}
	chatID := query.Message.Chat.ID

	// Stop the telegram spinner when we return.
	defer func() { _, _ = b.api.Request(tgbotapi.NewCallback(query.ID, "")) }()

	data := strings.TrimSpace(query.Data)
	switch {
	case data == "cmd:new":
		return b.newGame(ctx, chatID)
	case data == "cmd:about":
		return b.sendStartMenu(chatID, aboutText)
	case strings.HasPrefix(data, "roll:"):
		return b.resolveRoll(ctx, chatID)
	default:
		b.logger.Warn("Unknown callback data", "data", data)
		return nil
	}
}

func (b *Bot) sendStartMenu(chatID int64, intro string) error {
	msg := tgbotapi.NewMessage(chatID, intro)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚔️ New adventure", "cmd:new"),
			tgbotapi.NewInlineKeyboardButtonData("📜 About", "cmd:about"),
		),
	)
	_, err := b.api.Send(msg)
	return err
}

// newGame resets the session and invites the player to describe their
// hero. Their next message becomes the opening turn.
func (b *Bot) newGame(ctx context.Context, chatID int64) error {
	if _, err := b.engine.NewGame(ctx, sessionID(chatID)); err != nil {
		b.logger.Error("New game failed", "chat_id", chatID, "error", err)
		return b.send(chatID, engine.Apology)
	}
	return b.send(chatID, createHeroText)
}

func (b *Bot) playerTurn(ctx context.Context, chatID int64, text string) error {
	b.typing(chatID)

	result, err := b.engine.Interact(ctx, sessionID(chatID), text)
	if err != nil {
		b.logger.Error("Turn failed", "chat_id", chatID, "error", err)
		return b.send(chatID, engine.Apology)
	}
	return b.sendResult(chatID, result)
}

func (b *Bot) resolveRoll(ctx context.Context, chatID int64) error {
	b.typing(chatID)

	result, err := b.engine.Roll(ctx, sessionID(chatID))
	if err != nil {
		if errors.Is(err, engine.ErrNoPendingRoll) {
			return b.send(chatID, "No roll is waiting. Tell me what you do instead.")
		}
		b.logger.Error("Roll failed", "chat_id", chatID, "error", err)
		return b.send(chatID, engine.Apology)
	}

	if result.RollEcho != "" {
		if err := b.send(chatID, result.RollEcho); err != nil {
			return err
		}
	}
	return b.sendResult(chatID, result)
}

// sendResult delivers the narrator text and, when a roll is pending,
// attaches the dice button that resolves it.
func (b *Bot) sendResult(chatID int64, result *engine.Result) error {
	msg := tgbotapi.NewMessage(chatID, result.Text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if result.PendingRoll != nil {
		notation := fmt.Sprintf("%dd%d", result.PendingRoll.Count, result.PendingRoll.Sides)
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🎲 Roll "+notation, "roll:"+notation),
			),
		)
	}
	if _, err := b.api.Send(msg); err != nil {
		// Narrator prose can contain characters Markdown rejects.
		msg.ParseMode = ""
		_, err = b.api.Send(msg)
		return err
	}
	return nil
}

func (b *Bot) send(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) typing(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("Typing action failed", "chat_id", chatID, "error", err)
	}
}
