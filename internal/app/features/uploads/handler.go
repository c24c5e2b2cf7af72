// internal/app/features/uploads/handler.go
package uploads

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/noticehub/noticehub/internal/app/system/auth"
	"github.com/noticehub/noticehub/internal/app/system/httpjson"
	"github.com/noticehub/noticehub/internal/app/system/limits"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Content types a notice attachment may have. Everything else is rejected
// before touching storage.
var allowedContentTypes = map[string]string{
	"image/jpeg":      "images",
	"image/png":       "images",
	"image/gif":       "images",
	"image/webp":      "images",
	"application/pdf": "documents",
}

// Handler owns the admin upload endpoint. Files go through the blob store
// boundary; the service only ever hands back an opaque URL.
type Handler struct {
	Storage storage.Store
	Log     *zap.Logger
}

func NewHandler(store storage.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Storage: store,
		Log:     logger,
	}
}

type uploadResponse struct {
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// Create handles POST /uploads (multipart, field "file").
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxUploadSize)
	if err := r.ParseMultipartForm(limits.MaxUploadSize); err != nil {
		httpjson.Error(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	kind, ok := allowedContentTypes[contentType]
	if !ok {
		httpjson.Error(w, http.StatusUnsupportedMediaType, "only images and PDFs are accepted")
		return
	}

	// Path: <kind>/YYYY/MM/<uuid8>-<filename>. The uuid prefix keeps two
	// uploads of the same filename from clobbering each other.
	now := time.Now().UTC()
	uniqueName := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(header.Filename))
	path := filepath.ToSlash(filepath.Join(
		fmt.Sprintf("%s/%04d/%02d", kind, now.Year(), now.Month()), uniqueName))

	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := h.Storage.Put(r.Context(), path, file, opts); err != nil {
		h.Log.Error("uploads: storage put failed",
			zap.Error(err), zap.String("org_id", user.ID))
		httpjson.Error(w, http.StatusInternalServerError, "upload failed")
		return
	}

	h.Log.Info("file uploaded",
		zap.String("org_id", user.ID),
		zap.String("path", path),
		zap.Int64("size", header.Size))

	httpjson.Write(w, http.StatusCreated, uploadResponse{
		URL:         h.Storage.URL(path),
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: contentType,
	})
}

// sanitizeFilename removes or replaces characters that could be problematic in filenames.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	if filename == "." || filename == string(filepath.Separator) {
		return "file"
	}

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		// Truncate but preserve extension if present
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}

	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
