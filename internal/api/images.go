package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/jedilnik/internal/auth"
	"github.com/erazemk/jedilnik/internal/imaging"
	"github.com/erazemk/jedilnik/internal/store"
)

// ImagesHandler handles image upload and retrieval.
type ImagesHandler struct {
	DB        *sql.DB
	MaxUpload int64
}

type uploadResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Base64 string `json:"base64"`
}

// Upload handles POST /api/upload-image. The form carries the file under
// "image" and the owning restaurant under "restaurantId".
func (h *ImagesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart framing around the file.
	limit := h.MaxUpload + 64<<10
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		jsonError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	restaurantID, err := strconv.ParseInt(r.FormValue("restaurantId"), 10, 64)
	if err != nil || restaurantID <= 0 {
		jsonError(w, http.StatusBadRequest, "restaurantId required")
		return
	}
	if loadRestaurantByID(w, r, h.DB, restaurantID) == nil {
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	result, err := imaging.Process(file, h.MaxUpload)
	if err != nil {
		if errors.Is(err, imaging.ErrTooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	img, err := store.CreateImage(r.Context(), h.DB, restaurantID, result.Data, result.MIME)
	if err != nil {
		slog.Error("failed to save image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	slog.Info("image uploaded", "user", auth.SessionFrom(r.Context()).Claims.Username,
		"restaurant", restaurantID, "image", img.ID, "bytes", len(result.Data))
	jsonResponse(w, http.StatusCreated, uploadResponse{
		ID:     img.ID,
		URL:    store.ImagePath + img.ID,
		Base64: result.DataURL(),
	})
}

// Get handles GET /api/images/{id}. Images are public so menus can embed them.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	img, err := store.GetImage(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if img == nil {
		jsonError(w, http.StatusNotFound, "image not found")
		return
	}

	w.Header().Set("Content-Type", img.MIME)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(img.Data)
}
