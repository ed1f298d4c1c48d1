package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/arxchive-be/types"
)

func TestMemorySessionStoreUnknownID(t *testing.T) {
	store := NewMemorySessionStore()

	state, err := store.Get(context.Background(), "unknown")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Nil(t, state.CurrentPaper)
	assert.NotNil(t, state.UploadedPaths)
}

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	state := types.NewConversationState()
	state.PDFPath = "files/x.pdf"
	state.Messages = []types.Message{{Role: types.RoleUser, Content: "hi"}}
	state.UploadedPaths["files/x.pdf"] = true
	require.NoError(t, store.Save(ctx, "u1", state))

	loaded, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "files/x.pdf", loaded.PDFPath)
	assert.Len(t, loaded.Messages, 1)
	assert.True(t, loaded.UploadedPaths["files/x.pdf"])

	// Sessions are isolated per user.
	other, err := store.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other.PDFPath)
}

func TestMemorySessionStoreDelete(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	state := types.NewConversationState()
	state.PDFPath = "files/x.pdf"
	require.NoError(t, store.Save(ctx, "u1", state))
	require.NoError(t, store.Delete(ctx, "u1"))

	loaded, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, loaded.PDFPath)
}
