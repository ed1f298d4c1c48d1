package service

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/tieubaoca/arxchive-be/types"
	"github.com/tieubaoca/arxchive-be/utils"
)

// IngestService downloads a paper's PDF, persists a local copy, and
// registers it with the remote staging area exactly once per unique
// local path.
type IngestService struct {
	filesDir   string
	destPrefix string
	stage      Stage
	client     *http.Client
}

func NewIngestService(filesDir, destPrefix string, stage Stage, client *http.Client) *IngestService {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &IngestService{
		filesDir:   filesDir,
		destPrefix: destPrefix,
		stage:      stage,
		client:     client,
	}
}

// Ingest fetches the paper, uploads it to the staging area if this
// local path has not been uploaded before, and binds the paper to the
// conversation. The message log is cleared for the new paper.
func (s *IngestService) Ingest(ctx context.Context, state *types.ConversationState, paper *types.Paper) (string, error) {
	localPath, err := s.download(ctx, paper)
	if err != nil {
		return "", err
	}

	// At-most-once upload, keyed on the local path string.
	if !state.UploadedPaths[localPath] {
		if err := s.stage.Put(ctx, localPath, s.destPrefix, true); err != nil {
			return "", fmt.Errorf("failed to stage %s: %w", localPath, err)
		}
		state.UploadedPaths[localPath] = true
	}

	state.CurrentPaper = paper
	state.PDFPath = localPath
	state.Messages = nil
	return localPath, nil
}

func (s *IngestService) download(ctx context.Context, paper *types.Paper) (string, error) {
	filename := CanonicalFilename(paper)
	localPath := filepath.Join(s.filesDir, filename)

	// Skip the download if the PDF is already on disk.
	if _, err := os.Stat(localPath); err == nil {
		return localPath, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, paper.PDFURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := utils.DoWithRetry(ctx, s.client, req, 0)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", paper.PDFURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("PDF download returned HTTP %d", resp.StatusCode)
	}

	return utils.SaveToFile(resp.Body, s.filesDir, filename)
}

// CanonicalFilename builds the paper's on-disk name from its arXiv ID
// and title, e.g. "2301.07041v1.Attention_Is_All_You_Need.pdf".
func CanonicalFilename(paper *types.Paper) string {
	return utils.SanitizeFilename(fmt.Sprintf("%s.%s.pdf", ArxivID(paper.EntryID), paper.Title))
}
