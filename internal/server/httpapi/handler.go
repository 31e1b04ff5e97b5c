package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bierclub/bier/internal/logging"
	"github.com/bierclub/bier/internal/server/models"
	"github.com/bierclub/bier/internal/server/services"
)

// Users is the session lifecycle the handlers need.
type Users interface {
	Register(ctx context.Context, rc services.RequestContext, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, rc services.RequestContext, in services.LoginInput) (*services.AuthResult, error)
	Logout(ctx context.Context, id services.Identity) error
	Me(ctx context.Context, id services.Identity) (*models.User, error)
	Authenticate(ctx context.Context, bearer string) (services.Identity, error)
}

// Accounts covers email verification and password reset.
type Accounts interface {
	VerifyEmail(ctx context.Context, tokenID string) error
	ResendVerification(ctx context.Context, id services.Identity) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, tokenID, newPassword string) error
}

// Chat covers club messages.
type Chat interface {
	Send(ctx context.Context, id services.Identity, clubID int64, content string) (*models.Message, error)
	List(ctx context.Context, id services.Identity, clubID int64, limit int) ([]models.Message, error)
}

type Handler struct {
	Users    Users
	Accounts Accounts
	Chat     Chat
	logger   logging.Logger
}

func NewHandler(users Users, accounts Accounts, chat Chat, logger logging.Logger) *Handler {
	return &Handler{
		Users:    users,
		Accounts: accounts,
		Chat:     chat,
		logger:   logger.With("module", "http"),
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User              *models.User `json:"user"`
	Token             string       `json:"token"`
	EncryptedMetadata string       `json:"encrypted_metadata"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type forgotRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type messageRequest struct {
	Content string `json:"content"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.Users.Register(r.Context(), requestContext(r), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(w, r, err, msgUnauthorized)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: res.User, Token: res.Token, EncryptedMetadata: res.EncryptedMetadata})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.Users.Login(r.Context(), requestContext(r), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(w, r, err, msgBadCredentials)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: res.User, Token: res.Token, EncryptedMetadata: res.EncryptedMetadata})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Logout(r.Context(), requestContext(r).Identity); err != nil {
		h.respondError(w, r, err, msgUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.Me(r.Context(), requestContext(r).Identity)
	if err != nil {
		h.respondError(w, r, err, msgUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Accounts.VerifyEmail(r.Context(), req.Token); err != nil {
		h.respondError(w, r, err, msgUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	if err := h.Accounts.ResendVerification(r.Context(), requestContext(r).Identity); err != nil {
		h.respondError(w, r, err, msgUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		h.respondError(w, r, err, msgUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Accounts.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.respondError(w, r, err, msgUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	var req messageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.Chat.Send(r.Context(), requestContext(r).Identity, clubID, req.Content)
	if err != nil {
		h.respondError(w, r, err, msgUnauthorized)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	msgs, err := h.Chat.List(r.Context(), requestContext(r).Identity, clubID, limit)
	if err != nil {
		h.respondError(w, r, err, msgUnauthorized)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func clubIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "clubID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid club id")
		return 0, false
	}
	return id, true
}
