package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/arxchive-be/types"
)

type stagePut struct {
	localPath string
	dest      string
	overwrite bool
}

type fakeStage struct {
	puts []stagePut
	err  error
}

func (f *fakeStage) Put(_ context.Context, localPath, dest string, overwrite bool) error {
	if f.err != nil {
		return f.err
	}
	f.puts = append(f.puts, stagePut{localPath: localPath, dest: dest, overwrite: overwrite})
	return nil
}

func newPDFServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	downloads := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		downloads++
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.5 fake body")
	}))
	t.Cleanup(ts.Close)
	return ts, &downloads
}

func ingestTestPaper(pdfURL string) *types.Paper {
	return &types.Paper{
		EntryID: "http://arxiv.org/abs/2301.07041v1",
		Title:   "Some Paper",
		PDFURL:  pdfURL,
	}
}

func TestIngestDownloadsAndStagesOnce(t *testing.T) {
	ts, downloads := newPDFServer(t)
	stage := &fakeStage{}
	dir := t.TempDir()
	svc := NewIngestService(dir, "/", stage, ts.Client())

	state := types.NewConversationState()
	paper := ingestTestPaper(ts.URL + "/2301.07041v1.pdf")

	localPath, err := svc.Ingest(context.Background(), state, paper)
	require.NoError(t, err)

	body, err := os.ReadFile(localPath)
	require.NoError(t, err)
	assert.Contains(t, string(body), "%PDF")

	require.Len(t, stage.puts, 1)
	assert.Equal(t, localPath, stage.puts[0].localPath)
	assert.Equal(t, "/", stage.puts[0].dest)
	assert.True(t, stage.puts[0].overwrite)
	assert.True(t, state.UploadedPaths[localPath])

	assert.Equal(t, paper, state.CurrentPaper)
	assert.Equal(t, localPath, state.PDFPath)
	assert.Empty(t, state.Messages)
	assert.Equal(t, 1, *downloads)
}

func TestIngestIsIdempotentPerPath(t *testing.T) {
	ts, downloads := newPDFServer(t)
	stage := &fakeStage{}
	svc := NewIngestService(t.TempDir(), "/", stage, ts.Client())

	state := types.NewConversationState()
	paper := ingestTestPaper(ts.URL + "/2301.07041v1.pdf")

	first, err := svc.Ingest(context.Background(), state, paper)
	require.NoError(t, err)
	second, err := svc.Ingest(context.Background(), state, paper)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Exactly one remote upload and one download for two ingests of
	// the same local path.
	assert.Len(t, stage.puts, 1)
	assert.Equal(t, 1, *downloads)
}

func TestIngestStageFailureIsNotRegistered(t *testing.T) {
	ts, _ := newPDFServer(t)
	stage := &fakeStage{err: errors.New("stage unavailable")}
	svc := NewIngestService(t.TempDir(), "/", stage, ts.Client())

	state := types.NewConversationState()
	paper := ingestTestPaper(ts.URL + "/2301.07041v1.pdf")

	_, err := svc.Ingest(context.Background(), state, paper)
	require.Error(t, err)
	assert.Empty(t, state.UploadedPaths)
	assert.Nil(t, state.CurrentPaper)
}

func TestIngestDownloadFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)

	svc := NewIngestService(t.TempDir(), "/", &fakeStage{}, ts.Client())
	state := types.NewConversationState()

	_, err := svc.Ingest(context.Background(), state, ingestTestPaper(ts.URL+"/missing.pdf"))
	require.Error(t, err)
	assert.Nil(t, state.CurrentPaper)
}

func TestCanonicalFilename(t *testing.T) {
	paper := &types.Paper{
		EntryID: "http://arxiv.org/abs/2301.07041v1",
		Title:   "Attention Is All You Need",
	}
	assert.Equal(t, "2301.07041v1.Attention_Is_All_You_Need.pdf", CanonicalFilename(paper))
}
