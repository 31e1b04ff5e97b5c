package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bierclub/bier/internal/common"
)

const (
	minUsernameLen = 3
	minEmailLen    = 5
	minPasswordLen = 8
	maxPasswordLen = 1024

	MsgUsernameTooShort = "username must be at least 3 characters"
	MsgInvalidEmail     = "invalid email address"
	MsgPasswordTooShort = "password must be at least 8 characters"
	MsgPasswordTooLong  = "password is too long"
)

// knownTLDs are the final domain labels after which trailing punctuation
// is dropped, so "alice@x.com>" pasted from a mail client matches the
// stored address.
var knownTLDs = []string{"com", "nl", "net", "org", "be", "eu", "de", "uk", "edu", "gov"}

// validateRegistration checks username, email, then password, and reports
// the first violation.
func validateRegistration(username, email, password string) error {
	if utf8.RuneCountInString(strings.TrimSpace(username)) < minUsernameLen {
		return common.NewValidationError("username", MsgUsernameTooShort)
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	return validatePassword(password)
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") || len(email) < minEmailLen {
		return common.NewValidationError("email", MsgInvalidEmail)
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return common.NewValidationError("password", MsgPasswordTooShort)
	}
	if len(password) > maxPasswordLen {
		return common.NewValidationError("password", MsgPasswordTooLong)
	}
	return nil
}

// NormalizeEmail lowercases and trims email, strips trailing dots and
// cuts non-alphanumeric junk following a known TLD in the domain.
func NormalizeEmail(email string) string {
	email = strings.TrimRight(strings.ToLower(strings.TrimSpace(email)), ".")

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}

	dot := strings.LastIndex(email, ".")
	if dot < at {
		return email
	}

	label := email[dot+1:]
	for _, tld := range knownTLDs {
		rest, ok := strings.CutPrefix(label, tld)
		if ok && rest != "" && strings.IndexFunc(rest, isAlnum) < 0 {
			return strings.TrimRight(email[:dot+1+len(tld)], ".")
		}
	}

	return email
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
