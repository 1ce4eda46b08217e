// Package sms implements the SMS channel on the OneSignal REST API.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"cravlr/config"
	"cravlr/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	defaultAPIBaseURL = "https://onesignal.com/api/v1"
	requestTimeout    = 10 * time.Second
)

type oneSignalSender struct {
	appID      string
	apiKey     string
	smsFrom    string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOneSignalSender is the constructor for oneSignalSender.
func NewOneSignalSender(cfg *config.Config, logger *slog.Logger) service.SMSSender {
	smsCfg := cfg.OneSignal
	if smsCfg == nil {
		smsCfg = &config.OneSignalConfig{}
	}

	baseURL := defaultAPIBaseURL
	if smsCfg.APIBaseURL != "" {
		baseURL = smsCfg.APIBaseURL
	}

	return &oneSignalSender{
		appID:      smsCfg.AppID,
		apiKey:     smsCfg.APIKey,
		smsFrom:    smsCfg.SMSFrom,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// createMessageRequest is the OneSignal create-notification payload for SMS.
type createMessageRequest struct {
	AppID               string            `json:"app_id"`
	SMSFrom             string            `json:"sms_from"`
	IncludePhoneNumbers []string          `json:"include_phone_numbers"`
	Contents            map[string]string `json:"contents"`
}

type createMessageResponse struct {
	ID     string `json:"id"`
	Errors any    `json:"errors,omitempty"`
}

// SendBatch sends the same message to many phone numbers in one API call.
// OneSignal fans out per number; a rejected request counts every number as
// failed and reports them all back.
func (s *oneSignalSender) SendBatch(ctx context.Context, phoneNumbers []string, message string) (sent, failed int, failedNumbers []string, err error) {
	if len(phoneNumbers) == 0 {
		return 0, 0, nil, nil
	}

	payload := createMessageRequest{
		AppID:               s.appID,
		SMSFrom:             s.smsFrom,
		IncludePhoneNumbers: phoneNumbers,
		Contents:            map[string]string{"en": message},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, len(phoneNumbers), phoneNumbers, errors.Wrap(err, "failed to marshal OneSignal request")
	}

	endpoint := fmt.Sprintf("%s/notifications", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, len(phoneNumbers), phoneNumbers, errors.Wrap(err, "failed to build OneSignal request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, len(phoneNumbers), phoneNumbers, errors.Wrap(err, "OneSignal request failed")
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("OneSignal rejected SMS batch",
			slog.Int("status", resp.StatusCode),
			slog.Int("recipients", len(phoneNumbers)),
		)

		return 0, len(phoneNumbers), phoneNumbers, errors.Errorf("OneSignal returned status %d", resp.StatusCode)
	}

	var parsed createMessageResponse
	if err := json.Unmarshal(respBody, &parsed); err == nil && parsed.Errors != nil {
		s.logger.Warn("OneSignal reported errors on SMS batch",
			slog.Any("errors", parsed.Errors),
		)

		return 0, len(phoneNumbers), phoneNumbers, errors.New("OneSignal reported delivery errors")
	}

	s.logger.Debug("SMS batch accepted",
		slog.String("message_id", parsed.ID),
		slog.Int("recipients", len(phoneNumbers)),
	)

	return len(phoneNumbers), 0, nil, nil
}
