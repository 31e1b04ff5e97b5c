package mail

import (
	"context"

	"github.com/bierclub/bier/internal/logging"
)

// LogSender writes messages to the log instead of delivering them. Used
// when no Resend API key is configured.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to, subject, html string) error {
	s.logger.Info(ctx, "email not sent, no provider configured", "to", to, "subject", subject, "html", html)
	return nil
}
