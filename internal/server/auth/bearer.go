package auth

import (
	"strings"

	"github.com/bierclub/bier/internal/common"
)

// BearerToken extracts the token from an authorization value of the form
// "Bearer <token>". The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	if len(header) <= len(common.BearerPrefix) ||
		!strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(common.BearerPrefix):])
	return token, token != ""
}
