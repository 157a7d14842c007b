package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/agrosig/agrosig-api/internal/filestore"
	"github.com/agrosig/agrosig-api/internal/respond"
	"github.com/agrosig/agrosig-api/internal/user/entity"
)

// maxImageSize bounds multipart memory use for profile image uploads.
const maxImageSize = 8 << 20

// Handler exposes HTTP endpoints for user operations.
type Handler struct {
	svc    *Service
	files  *filestore.Store
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, files *filestore.Store, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, files: files, logger: logger}
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	u, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Error fetching user")
		return
	}
	respond.OK(w, http.StatusOK, "", u)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err, "Error fetching users")
		return
	}
	respond.OK(w, http.StatusOK, "", users)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var in entity.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debugw("invalid profile payload", "err", err)
		respond.Fail(w, http.StatusBadRequest, "invalid payload")
		return
	}
	updated, err := h.svc.UpdateProfile(r.Context(), id, in)
	if err != nil {
		h.writeError(w, err, "Error updating user")
		return
	}
	respond.OK(w, http.StatusOK, "", updated)
}

type passwordUpdateRequest struct {
	OldPassword      string `json:"oldPassword"`
	NewPassword      string `json:"newPassword"`
	RepeatedPassword string `json:"repeatedPassword"`
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var in passwordUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debugw("invalid password payload", "err", err)
		respond.Fail(w, http.StatusBadRequest, "invalid payload")
		return
	}
	u, err := h.svc.UpdatePassword(r.Context(), id, in.OldPassword, in.NewPassword, in.RepeatedPassword)
	if err != nil {
		h.writeError(w, err, "Error updating password")
		return
	}
	respond.OK(w, http.StatusOK, "Password updated successfully", u)
}

func (h *Handler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("image_user")
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "no image provided")
		return
	}
	defer file.Close()

	imagePath, err := h.files.SaveProfileImage(header.Filename, file)
	if err != nil {
		if errors.Is(err, filestore.ErrUnsupportedImage) {
			respond.Fail(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("store profile image", "err", err)
		respond.Fail(w, http.StatusInternalServerError, "Error updating image")
		return
	}

	_, oldImage, err := h.svc.UpdateImage(r.Context(), id, imagePath)
	if err != nil {
		// domain failed after the upload landed on disk; reclaim the file
		if rmErr := h.files.Remove(imagePath); rmErr != nil {
			h.logger.Warnw("remove orphaned upload", "path", imagePath, "err", rmErr)
		}
		h.writeError(w, err, "Error updating image")
		return
	}

	if oldImage != "" {
		if rmErr := h.files.Remove(oldImage); rmErr != nil {
			h.logger.Warnw("remove superseded image", "path", oldImage, "err", rmErr)
		}
	}

	respond.OK(w, http.StatusOK, "User image updated successfully", map[string]string{
		"imageUrl": "/uploads/profile/" + filepath.Base(imagePath),
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, err, "Error deleting user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrSamePassword),
		errors.Is(err, ErrPasswordMismatch), errors.Is(err, ErrWeakPassword):
		respond.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateEmail):
		respond.Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrBadCredentials):
		respond.Fail(w, http.StatusUnauthorized, err.Error())
	default:
		h.logger.Errorw("user request failed", "err", err)
		respond.Fail(w, http.StatusInternalServerError, fallback)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
