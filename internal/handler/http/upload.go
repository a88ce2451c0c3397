package http

import (
	"log/slog"
	"net/http"

	"github.com/yahyahetari/electronics-admin/internal/media"
	"github.com/yahyahetari/electronics-admin/pkg/httputil"
)

// maxUploadBytes caps the total multipart payload per upload request.
const maxUploadBytes = 32 << 20

// UploadHandler proxies image uploads to the media service.
type UploadHandler struct {
	client *media.Client
	logger *slog.Logger
}

// NewUploadHandler creates a new upload HTTP handler.
func NewUploadHandler(client *media.Client, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		client: client,
		logger: logger,
	}
}

// UploadResponse is the JSON response body for a successful upload.
type UploadResponse struct {
	Links []string `json:"links"`
}

// Upload handles POST /api/v1/uploads
// Accepts one or more files under the multipart field "file" and returns the
// public URLs the media service stored them at, in request order.
// @Summary Upload images
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image files"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/uploads [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid multipart body: " + err.Error()},
		})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "at least one file is required"},
		})
		return
	}

	links := make([]string, 0, len(headers))
	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "open uploaded file: " + err.Error()},
			})
			return
		}

		result, err := h.client.Upload(r.Context(), fh.Filename, fh.Header.Get("Content-Type"), file)
		file.Close()
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}

		links = append(links, result.URL)
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: UploadResponse{Links: links}})
}
