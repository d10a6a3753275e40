package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/njerikim/baraza/internal/storage"
	"github.com/njerikim/baraza/internal/util"
)

const maxUploadSize = 16 << 20 // 16 MiB

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".mp4":  {},
}

type MediaHandler struct {
	store storage.Store
}

func NewMediaHandler(store storage.Store) *MediaHandler {
	return &MediaHandler{store: store}
}

// Upload accepts a multipart form with a single "file" field and returns the
// URL where the stored object can be fetched.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_FILE", "A \"file\" form field is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		writeError(w, http.StatusBadRequest, "UNSUPPORTED_TYPE", "Only png, jpg, jpeg, gif and mp4 files are accepted")
		return
	}

	url, err := h.store.Save(r.Context(), file, ext)
	if err != nil {
		util.Logger.Error("media upload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
