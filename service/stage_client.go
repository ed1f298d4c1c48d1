package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Stage is the remote storage/staging area that feeds the search index.
// Put is idempotent per (path, dest) pair only when the caller guards it
// with the uploaded-paths registry.
type Stage interface {
	Put(ctx context.Context, localPath, dest string, overwrite bool) error
}

// HTTPStage pushes files to the staging endpoint as multipart uploads.
type HTTPStage struct {
	endpoint string
	client   *http.Client
}

func NewHTTPStage(endpoint string, client *http.Client) *HTTPStage {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPStage{
		endpoint: endpoint,
		client:   client,
	}
}

func (s *HTTPStage) Put(ctx context.Context, localPath, dest string, overwrite bool) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read %s: %w", localPath, err)
	}
	writer.WriteField("dest", dest)
	writer.WriteField("overwrite", strconv.FormatBool(overwrite))
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &body)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("stage upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("stage returned HTTP %d", resp.StatusCode)
	}
	return nil
}
