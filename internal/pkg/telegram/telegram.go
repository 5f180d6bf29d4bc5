// Package telegram forwards contact messages to a Telegram chat.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mx-space/portfolio/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultAPIBase = "https://api.telegram.org"
	DefaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// Config holds the bot credentials and target chat.
type Config struct {
	BotToken string
	ChatID   string
	APIBase  string
	Timeout  time.Duration
}

// Enabled reports whether enough is configured to send anything.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.BotToken) != "" && strings.TrimSpace(c.ChatID) != ""
}

// DeliveryError is a failed sendMessage call. It never reaches API clients.
type DeliveryError struct {
	StatusCode  int
	Description string
	Err         error
}

func (e *DeliveryError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("telegram delivery failed: %v", e.Err)
	case e.Description != "":
		return fmt.Sprintf("telegram delivery failed: status %d: %s", e.StatusCode, e.Description)
	default:
		return fmt.Sprintf("telegram delivery failed: status %d", e.StatusCode)
	}
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Service sends chat messages through the Bot API.
type Service struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
	wg         sync.WaitGroup
}

// New creates a Telegram service. A zero Timeout falls back to DefaultTimeout.
func New(cfg Config, logger *zap.Logger) *Service {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("telegram"),
	}
}

type sendMessagePayload struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// FormatContactMessage renders the notification text for a contact submission.
func FormatContactMessage(m *models.MessageModel) string {
	return fmt.Sprintf("<b>New Contact Message</b>\nFrom: %s\nEmail: %s\nMessage: %s",
		html.EscapeString(m.Name),
		html.EscapeString(m.Email),
		html.EscapeString(m.Message),
	)
}

// Send posts text to the configured chat once. It does not retry.
func (s *Service) Send(ctx context.Context, text string) error {
	if !s.cfg.Enabled() {
		return &DeliveryError{Err: errors.New("bot token or chat id not configured")}
	}

	body, err := json.Marshal(sendMessagePayload{
		ChatID:    s.cfg.ChatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return &DeliveryError{Err: err}
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.cfg.APIBase, s.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// The URL embeds the bot token; keep it out of logs.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return &DeliveryError{Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var parsed apiResponse
	_ = json.Unmarshal(raw, &parsed)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !parsed.OK {
		return &DeliveryError{StatusCode: resp.StatusCode, Description: parsed.Description}
	}
	return nil
}

// Notify forwards a contact message in the background. Failures are logged
// and never reported to the caller.
func (s *Service) Notify(m *models.MessageModel) {
	if !s.cfg.Enabled() {
		s.logger.Debug("telegram not configured, skipping contact notification", zap.Uint("message_id", m.ID))
		return
	}
	text := FormatContactMessage(m)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		if err := s.Send(ctx, text); err != nil {
			s.logger.Warn("contact notification failed", zap.Uint("message_id", m.ID), zap.Error(err))
			return
		}
		s.logger.Info("contact notification sent", zap.Uint("message_id", m.ID))
	}()
}

// Wait blocks until in-flight notifications finish. Used on shutdown and in tests.
func (s *Service) Wait() { s.wg.Wait() }

// Enabled reports whether Notify will attempt delivery.
func (s *Service) Enabled() bool { return s.cfg.Enabled() }
