package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultResendEndpoint = "https://api.resend.com/emails"
	defaultSendTimeout    = 10 * time.Second
)

// ResendSender posts messages to the Resend HTTP API.
type ResendSender struct {
	client   *http.Client
	endpoint string
	apiKey   string
	from     string
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// NewResendSender returns a sender with a bounded client timeout. An empty
// endpoint means DefaultResendEndpoint.
func NewResendSender(apiKey, from, endpoint string) *ResendSender {
	if endpoint == "" {
		endpoint = DefaultResendEndpoint
	}
	return &ResendSender{
		client:   &http.Client{Timeout: defaultSendTimeout},
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
	}
}

func (s *ResendSender) Send(ctx context.Context, to, subject, html string) error {
	body, err := json.Marshal(resendPayload{From: s.from, To: []string{to}, Subject: subject, HTML: html})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend error: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
