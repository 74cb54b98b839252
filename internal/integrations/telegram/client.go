package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/matiin1402/InternalLinkBot/internal/domain"
)

// MaxMessageRunes keeps every outgoing chunk under Telegram's 4096 character
// message limit.
const MaxMessageRunes = 4000

// botAPI is the minimal Bot API surface used by Client.
// *tgbotapi.BotAPI satisfies this interface.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Client sends replies to Telegram chats.
type Client struct {
	api    botAPI
	maxLen int
}

func New(api botAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("telegram: api must not be nil")
	}
	return &Client{api: api, maxLen: MaxMessageRunes}, nil
}

// NewBot authenticates token against the Bot API. An empty endpoint uses
// the public Telegram API.
func NewBot(token, endpoint string, httpClient *http.Client) (*tgbotapi.BotAPI, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram: token is required")
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect bot: %w", err)
	}
	return bot, nil
}

// SendText sends text, split into several messages when it is too long.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range SplitMessage(text, c.maxLen) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := c.api.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return fmt.Errorf("telegram: send message: %w", err)
		}
	}
	return nil
}

// SendMenu sends text with one inline button per row.
func (c *Client) SendMenu(ctx context.Context, chatID int64, text string, buttons []domain.Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data)))
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: send menu: %w", err)
	}
	return nil
}

// EditText replaces the text of an earlier message, dropping its keyboard.
func (c *Client) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("telegram: edit message: %w", err)
	}
	return nil
}

// AnswerCallback stops the client-side loading indicator of a button press.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("telegram: answer callback: %w", err)
	}
	return nil
}

// SplitMessage cuts text into chunks of at most limit runes, preferring line
// breaks in the second half of a chunk.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i >= limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
