// Package bot adapts the Telegram transport to the dispatcher: inbound
// group messages become commands, dispatcher replies go back to the
// originating chat. All economy logic lives behind the dispatcher.
package bot

import (
	"context"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"breadbot/internal/dispatch"
	"breadbot/internal/domain"
)

type Bot struct {
	api        *tgbotapi.BotAPI
	dispatcher *dispatch.Dispatcher
	timeout    int
}

func New(api *tgbotapi.BotAPI, timeoutSeconds int) *Bot {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	return &Bot{api: api, timeout: timeoutSeconds}
}

// SetDispatcher wires the dispatcher in. The bot is also the
// dispatcher's reply sink, so construction is two-phase.
func (b *Bot) SetDispatcher(d *dispatch.Dispatcher) { b.dispatcher = d }

// Run long-polls for updates until the context is canceled. Each
// message is dispatched on its own goroutine; the dispatcher serializes
// ledger access internally.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.timeout
	updates := b.api.GetUpdatesChan(u)

	log.Printf("bot: %s is listening", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			cmd, ok := commandFromMessage(update.Message)
			if !ok {
				continue
			}
			go b.dispatcher.Handle(ctx, cmd)
		}
	}
}

// commandFromMessage normalizes a Telegram message into a dispatcher
// command. "/claim Alice" and "claim Alice" both become "claim Alice";
// the dispatcher ignores anything it does not recognize.
func commandFromMessage(m *tgbotapi.Message) (dispatch.Command, bool) {
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return dispatch.Command{}, false
	}
	if m.IsCommand() {
		text = strings.TrimSpace(m.Command() + " " + m.CommandArguments())
	}
	return dispatch.Command{
		From:  domain.ExternalID(strconv.FormatInt(m.From.ID, 10)),
		Scope: domain.ScopeID(strconv.FormatInt(m.Chat.ID, 10)),
		Text:  text,
	}, true
}

// Reply implements domain.ReplySink. Delivery failures are logged and
// swallowed; the economy has already committed by the time we get here.
func (b *Bot) Reply(_ context.Context, scope domain.ScopeID, correlationID, text string) {
	chatID, err := strconv.ParseInt(string(scope), 10, 64)
	if err != nil {
		log.Printf("bot: cmd=%s bad scope %q: %v", correlationID, scope, err)
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("bot: cmd=%s send failed: %v", correlationID, err)
	}
}
