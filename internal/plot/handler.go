package plot

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/agrosig/agrosig-api/internal/auth"
	"github.com/agrosig/agrosig-api/internal/plot/entity"
	"github.com/agrosig/agrosig-api/internal/respond"
)

// Handler exposes HTTP endpoints for plot operations.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	var in entity.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debugw("invalid plot payload", "err", err)
		respond.Fail(w, http.StatusBadRequest, "invalid payload")
		return
	}
	created, err := h.svc.Create(r.Context(), identity.UserID, in)
	if err != nil {
		h.writeError(w, err, "Error creating plot")
		return
	}
	respond.OK(w, http.StatusCreated, "Plot created successfully", created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	plotID, err := pathID(r, "plotId")
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid plot id")
		return
	}
	var in entity.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debugw("invalid plot payload", "err", err)
		respond.Fail(w, http.StatusBadRequest, "invalid payload")
		return
	}
	updated, err := h.svc.Update(r.Context(), identity.UserID, plotID, in)
	if err != nil {
		h.writeError(w, err, "Error updating plot")
		return
	}
	respond.OK(w, http.StatusOK, "", updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	plotID, err := pathID(r, "plotId")
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid plot id")
		return
	}
	if err := h.svc.Delete(r.Context(), identity.UserID, plotID); err != nil {
		h.writeError(w, err, "Error deleting plot")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	plotID, err := pathID(r, "plotId")
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid plot id")
		return
	}
	p, err := h.svc.GetByID(r.Context(), plotID)
	if err != nil {
		h.writeError(w, err, "Error fetching plot")
		return
	}
	respond.OK(w, http.StatusOK, "", p)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	plots, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err, "Error fetching plots")
		return
	}
	respond.OK(w, http.StatusOK, "", plots)
}

// UbicationCoords returns the latest plot coordinates for the user in the
// path.
func (h *Handler) UbicationCoords(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	coords, err := h.svc.LatestCoords(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, "Error fetching plot coordinates")
		return
	}
	respond.OK(w, http.StatusOK, "", coords)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrInvalidLocation),
		errors.Is(err, ErrInvalidArea), errors.Is(err, ErrMissingCoordinates):
		respond.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicatePlot):
		respond.Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		respond.Fail(w, http.StatusForbidden, err.Error())
	default:
		h.logger.Errorw("plot request failed", "err", err)
		respond.Fail(w, http.StatusInternalServerError, fallback)
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
