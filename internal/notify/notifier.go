// Package notify is the messaging boundary: appointment transitions and
// reminders go out as SMS through a provider client.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Notifier sends a text message to a phone number.
type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}

// LogNotifier writes messages to the log instead of sending them. Used in
// dev and whenever no SMS credentials are configured.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Send(_ context.Context, phone, message string) error {
	n.Log.Info().Str("phone", phone).Str("message", message).Msg("sms suppressed (no provider configured)")
	return nil
}

const defaultSMSEndpoint = "https://portal.sms2pro.com/sms-api/corporate-sms/send"

type smsRequest struct {
	Recipient  string `json:"recipient"`
	SenderName string `json:"sender_name"`
	Message    string `json:"message"`
}

type smsResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

// SMSClient sends messages through an HTTP SMS gateway with bearer auth.
type SMSClient struct {
	apiKey   string
	sender   string
	endpoint string
	client   *http.Client
	log      zerolog.Logger
}

func NewSMSClient(apiKey, sender string, log zerolog.Logger) *SMSClient {
	return &SMSClient{
		apiKey:   apiKey,
		sender:   sender,
		endpoint: defaultSMSEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log.With().Str("component", "sms").Logger(),
	}
}

func (s *SMSClient) Send(ctx context.Context, phone, message string) error {
	payload := smsRequest{
		Recipient:  phone,
		SenderName: s.sender,
		Message:    message,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read sms response: %w", err)
	}

	var parsed smsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Errorf("parse sms response: %w", err)
	}

	if resp.StatusCode >= 300 || parsed.Code != 0 {
		s.log.Error().
			Int("http_status", resp.StatusCode).
			Int("code", parsed.Code).
			Str("msg", parsed.Msg).
			Msg("sms send failed")
		return fmt.Errorf("sms provider rejected message: %s", parsed.Msg)
	}

	s.log.Info().Str("phone", phone).Msg("sms sent")
	return nil
}
