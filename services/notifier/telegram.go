package notifier

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"sjsage522/jobworker/helpers"
	"sjsage522/jobworker/logger"
	"sjsage522/jobworker/pkg/errors"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Telegram throttles bursts to a single chat to roughly one message a second
const (
	telegramSendInterval = time.Second
	telegramSendBurst    = 3
)

// TelegramNotifier sends messages through the Telegram Bot API
type TelegramNotifier struct {
	client   *resty.Client
	endpoint string
	botToken string
	chatID   string
	limiter  *rate.Limiter
	log      *logger.Logger
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegramNotifier creates a Telegram sink. baseURL is normally
// https://api.telegram.org.
func NewTelegramNotifier(baseURL, botToken, chatID string) *TelegramNotifier {
	client := resty.New()
	client.SetTimeout(15 * time.Second)

	return &TelegramNotifier{
		client:   client,
		endpoint: strings.TrimRight(baseURL, "/") + "/bot" + botToken + "/sendMessage",
		botToken: botToken,
		chatID:   chatID,
		limiter:  rate.NewLimiter(rate.Every(telegramSendInterval), telegramSendBurst),
		log:      logger.ForNotifier("telegram"),
	}
}

// Notify sends the notification text to the configured chat
func (t *TelegramNotifier) Notify(ctx context.Context, n Notification) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return errors.NewNotify("telegram", "gave up waiting for send slot", err)
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":                  t.chatID,
			"text":                     n.Text,
			"disable_web_page_preview": "true",
		}).
		Post(t.endpoint)
	if err != nil {
		return errors.NewNotify("telegram", "send failed", t.redact(err))
	}

	var body telegramResponse
	if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr != nil && resp.IsSuccess() {
		return errors.NewNotify("telegram", "unreadable response", jsonErr)
	}

	if !resp.IsSuccess() || !body.OK {
		return errors.NewNotify("telegram",
			fmt.Sprintf("rejected with status %d: %s", resp.StatusCode(), helpers.Truncate(body.Description, 200)), nil)
	}

	t.log.Debug().Str("key", n.Key).Msg("Message sent")
	return nil
}

// Close is a no-op; the HTTP client keeps no open sessions worth closing
func (t *TelegramNotifier) Close() error {
	return nil
}

// redact strips the bot token from transport errors, which embed the URL
func (t *TelegramNotifier) redact(err error) error {
	if t.botToken == "" {
		return err
	}
	return stderrors.New(strings.ReplaceAll(err.Error(), t.botToken, "<bot-token>"))
}
