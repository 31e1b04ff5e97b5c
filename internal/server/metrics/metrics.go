// Package metrics holds the Prometheus instruments of the auth and chat
// flows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Flow labels.
const (
	FlowRegister      = "register"
	FlowLogin         = "login"
	FlowLogout        = "logout"
	FlowAuthenticate  = "authenticate"
	FlowVerifyEmail   = "verify_email"
	FlowResendVerify  = "resend_verification"
	FlowForgot        = "forgot_password"
	FlowResetPassword = "reset_password"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeDenied   = "denied"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	authEvents          *prometheus.CounterVec
	chatDecryptFailures prometheus.Counter
	mailFailures        prometheus.Counter
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bier_auth_events_total",
			Help: "Identity flow results by flow and outcome",
		}, []string{"flow", "outcome"}),
		chatDecryptFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bier_chat_decrypt_failures_total",
			Help: "Chat messages replaced by a placeholder because they failed to decrypt",
		}),
		mailFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bier_mail_failures_total",
			Help: "Account emails that could not be delivered",
		}),
	}

	reg.MustRegister(m.authEvents, m.chatDecryptFailures, m.mailFailures)

	return m
}

func (m *Metrics) AuthEvent(flow, outcome string) {
	if m == nil {
		return
	}
	m.authEvents.WithLabelValues(flow, outcome).Inc()
}

func (m *Metrics) ChatDecryptFailure() {
	if m == nil {
		return
	}
	m.chatDecryptFailures.Inc()
}

func (m *Metrics) MailFailure() {
	if m == nil {
		return
	}
	m.mailFailures.Inc()
}
