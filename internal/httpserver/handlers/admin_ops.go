package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/logger"
)

// TriggerNews queues a manual news aggregation run. The run happens on
// the scheduler goroutine; a run already in flight makes this a no-op.
func TriggerNews(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.NewsTrigger <- struct{}{}:
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "news aggregation triggered"})
		default:
			writeJSON(w, http.StatusConflict, map[string]string{"status": "aggregation already queued"})
		}
	}
}

// TriggerEvents queues a manual events aggregation run.
func TriggerEvents(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.EventsTrigger <- struct{}{}:
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "events aggregation triggered"})
		default:
			writeJSON(w, http.StatusConflict, map[string]string{"status": "aggregation already queued"})
		}
	}
}

// Publish regenerates the static JSON snapshots synchronously.
func Publish(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := d.Events.GenerateStaticJSON(r.Context())
		if err != nil {
			d.Logger.Error("snapshot publish failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "snapshot generation failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "published",
			"files":  files,
		})
	}
}

// UploadImage stores a multipart image under a random filename. The
// extension must be on the allow-list and the body under the size cap.
func UploadImage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, d.MaxUploadBytes)
		if err := r.ParseMultipartForm(d.MaxUploadBytes); err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing image field")
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedExt(ext, d.AllowedImageExts) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("extension %q not allowed", ext))
			return
		}

		if err := os.MkdirAll(d.UploadDir, 0o755); err != nil {
			writeError(w, http.StatusInternalServerError, "upload storage unavailable")
			return
		}

		name := uuid.NewString() + ext
		path := filepath.Join(d.UploadDir, name)
		dst, err := os.Create(path)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "upload storage unavailable")
			return
		}
		defer dst.Close()

		if _, err := io.Copy(dst, file); err != nil {
			_ = os.Remove(path)
			writeError(w, http.StatusInternalServerError, "upload failed")
			return
		}

		d.Logger.Info("image uploaded",
			logger.String("file", name),
			logger.String("original", header.Filename))
		writeJSON(w, http.StatusCreated, map[string]string{
			"filename": name,
			"url":      "/uploads/" + name,
		})
	}
}

func allowedExt(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// DeleteArticle soft-deletes an article. The link hash survives so
// aggregation cannot re-ingest it.
func DeleteArticle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid article id")
			return
		}
		if err := d.Store.SoftDeleteArticle(id); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
