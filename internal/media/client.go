package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/yahyahetari/electronics-admin/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client proxies file uploads to the media service.
type Client struct {
	http    HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a media service client. baseURL is the root URL of the
// media service, e.g. "http://media:8080".
func NewClient(httpClient HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// UploadResult is the media service's record of a stored file.
type UploadResult struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type uploadEnvelope struct {
	Data *UploadResult `json:"data"`
}

// Upload streams a single file to the media service and returns the stored
// file's public URL and metadata.
func (c *Client) Upload(ctx context.Context, filename, contentType string, file io.Reader) (*UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreatePart(partHeader(filename, contentType))
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file into multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/media", &body)
	if err != nil {
		return nil, fmt.Errorf("build media upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call media service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, "media-service")
	}

	var envelope uploadEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode media service response: %w", err)
	}
	if envelope.Data == nil || envelope.Data.URL == "" {
		return nil, fmt.Errorf("media service returned no file URL")
	}

	c.logger.Debug("file uploaded",
		slog.String("filename", filename),
		slog.String("url", envelope.Data.URL),
	)

	return envelope.Data, nil
}

func partHeader(filename, contentType string) map[string][]string {
	quoted := strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(filename)
	h := map[string][]string{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoted)},
	}
	if contentType != "" {
		h["Content-Type"] = []string{contentType}
	}
	return h
}
