package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/agrosig/agrosig-api/internal/respond"
)

// Handler exposes the registration and login endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		respond.Fail(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, token, err := h.svc.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "Error registering user")
		return
	}
	respond.OKWithToken(w, http.StatusCreated, "User created successfully", user, token)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		respond.Fail(w, http.StatusBadRequest, "invalid payload")
		return
	}
	result, err := h.svc.Login(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "Error logging in user")
		return
	}
	respond.OK(w, http.StatusOK, "User logged in successfully", result)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrWeakPassword), errors.Is(err, ErrInvalidEmail):
		respond.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateUser), errors.Is(err, ErrExternalAccount):
		respond.Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrUserNotFound):
		respond.Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAccountInactive):
		respond.Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrBadCredentials):
		respond.Fail(w, http.StatusUnauthorized, err.Error())
	default:
		h.logger.Errorw("auth request failed", "err", err)
		respond.Fail(w, http.StatusInternalServerError, fallback)
	}
}
