// Package mail renders and delivers the account emails: address
// verification and password reset.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

// Sender delivers one HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

var (
	verifyTmpl = template.Must(template.New("verify").Parse(
		`<h1>Welcome to Bier</h1>` +
			`<p>Click the link below to confirm your email address:</p>` +
			`<p><a href="{{.Link}}">Confirm email</a></p>` +
			`<p>Or paste this code: <b>{{.Token}}</b></p>`))

	resetTmpl = template.Must(template.New("reset").Parse(
		`<h1>Reset your password</h1>` +
			`<p>Someone asked to reset the password of your Bier account. Click the link below:</p>` +
			`<p><a href="{{.Link}}">Reset password</a></p>` +
			`<p>If this was not you, ignore this email.</p>`))
)

const (
	VerifySubject = "Confirm your Bier account"
	ResetSubject  = "Reset your Bier password"
)

// Mailer builds deep links of the form <baseURL>/verify?token=<id> and
// <baseURL>/reset-password?token=<id> and hands the result to a Sender.
type Mailer struct {
	sender  Sender
	baseURL string
}

func NewMailer(sender Sender, baseURL string) *Mailer {
	return &Mailer{sender: sender, baseURL: strings.TrimRight(baseURL, "/")}
}

func (m *Mailer) SendVerification(ctx context.Context, to, tokenID string) error {
	return m.send(ctx, to, VerifySubject, verifyTmpl, m.link("/verify", tokenID), tokenID)
}

func (m *Mailer) SendReset(ctx context.Context, to, tokenID string) error {
	return m.send(ctx, to, ResetSubject, resetTmpl, m.link("/reset-password", tokenID), tokenID)
}

func (m *Mailer) link(path, tokenID string) string {
	return m.baseURL + path + "?" + url.Values{"token": {tokenID}}.Encode()
}

func (m *Mailer) send(ctx context.Context, to, subject string, tmpl *template.Template, link, tokenID string) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, struct{ Link, Token string }{link, tokenID}); err != nil {
		return fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return m.sender.Send(ctx, to, subject, body.String())
}
