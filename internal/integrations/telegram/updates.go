package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/matiin1402/InternalLinkBot/internal/domain"
)

// ToEvent converts a Bot API update into a chat event. ok is false for
// updates the bot does not react to (edits, stickers, channel posts).
func ToEvent(u tgbotapi.Update) (domain.Event, bool) {
	if cq := u.CallbackQuery; cq != nil {
		if cq.Message == nil || cq.Message.Chat == nil || cq.From == nil {
			return domain.Event{}, false
		}
		return domain.Event{
			Kind:       domain.EventSelect,
			ChatID:     cq.Message.Chat.ID,
			UserID:     cq.From.ID,
			MessageID:  cq.Message.MessageID,
			CallbackID: cq.ID,
			Data:       cq.Data,
		}, true
	}

	m := u.Message
	if m == nil || m.Chat == nil || m.From == nil {
		return domain.Event{}, false
	}
	ev := domain.Event{
		ChatID:    m.Chat.ID,
		UserID:    m.From.ID,
		MessageID: m.MessageID,
		Text:      m.Text,
	}
	switch {
	case m.IsCommand():
		switch m.Command() {
		case "start":
			ev.Kind = domain.EventStart
		case "cancel":
			ev.Kind = domain.EventCancel
		default:
			ev.Kind = domain.EventUnknownCommand
		}
	case m.Text != "":
		ev.Kind = domain.EventText
	default:
		return domain.Event{}, false
	}
	return ev, true
}

// DecodeUpdate parses a webhook request body.
func DecodeUpdate(body []byte) (tgbotapi.Update, error) {
	var u tgbotapi.Update
	if err := json.Unmarshal(body, &u); err != nil {
		return tgbotapi.Update{}, fmt.Errorf("telegram: decode update: %w", err)
	}
	return u, nil
}

// updateSource is the long-polling side of *tgbotapi.BotAPI.
type updateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poller drains long-polled updates, handling each one in its own goroutine.
type Poller struct {
	src     updateSource
	timeout int
}

func NewPoller(src updateSource) *Poller {
	return &Poller{src: src, timeout: 60}
}

// Run blocks until ctx is cancelled or the update channel closes, then waits
// for in-flight handlers. Handlers get a context that outlives shutdown.
func (p *Poller) Run(ctx context.Context, handle func(context.Context, tgbotapi.Update)) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	updates := p.src.GetUpdatesChan(cfg)

	handlerCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			p.src.StopReceivingUpdates()
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				handle(handlerCtx, u)
			}()
		}
	}
}
