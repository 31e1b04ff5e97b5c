package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bierclub/bier/internal/common"
)

const (
	msgInvalidRequest     = "invalid request"
	msgUnauthorized       = "unauthorized"
	msgBadCredentials     = "invalid email or password"
	msgEmailTaken         = "an account with this email already exists"
	msgTokenInvalid       = "invalid or expired token"
	msgSomethingWentWrong = "something went wrong, try again"

	maxBodyBytes = 1 << 20
)

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return false
	}
	return true
}

// respondError maps a service error to a status and a message safe for the
// client. unauthorizedMsg is the flow's generic 401 text.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error, unauthorizedMsg string) {
	var verr *common.ValidationError

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
	case errors.Is(err, common.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, unauthorizedMsg)
	case errors.Is(err, common.ErrConflict):
		writeError(w, http.StatusConflict, msgEmailTaken)
	case errors.Is(err, common.ErrTokenInvalidOrExpired):
		writeError(w, http.StatusBadRequest, msgTokenInvalid)
	default:
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, msgSomethingWentWrong)
	}
}
