package handlers

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jmalik/taskly-backend/internal/avatarimg"
	"github.com/jmalik/taskly-backend/internal/middleware"
	"github.com/jmalik/taskly-backend/internal/services"
)

// UploadAvatar handles POST /users/me/avatar: a multipart upload in field
// "avatar", at most 1 MiB, jpg/jpeg/png only. The image is normalized to
// a 250x250 PNG before anything is persisted.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	// Slack on top of the file limit covers multipart framing overhead.
	r.Body = http.MaxBytesReader(w, r.Body, avatarimg.MaxUploadBytes+(8<<10))

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "please upload an image")
		return
	}
	defer file.Close()

	if header.Size > avatarimg.MaxUploadBytes {
		writeError(w, http.StatusBadRequest, "image must be at most 1MB")
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !avatarimg.AllowedExtension(ext) {
		writeError(w, http.StatusBadRequest, "please upload an image")
		return
	}

	png, err := avatarimg.Normalize(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "please upload an image")
		return
	}

	if err := h.users.SetAvatar(r.Context(), user.ID, png); err != nil {
		log.Printf("ERROR storing avatar: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{})
}

// GetAvatar handles GET /users/{id}/avatar. Public: avatars are served
// without authentication, 404 when the user or avatar is absent.
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	png, err := h.users.GetAvatar(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		log.Printf("ERROR fetching avatar: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// DeleteAvatar handles DELETE /users/me/avatar.
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	if err := h.users.ClearAvatar(r.Context(), user.ID); err != nil {
		log.Printf("ERROR clearing avatar: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{})
}
