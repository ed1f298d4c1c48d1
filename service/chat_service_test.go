package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/arxchive-be/repository"
	"github.com/tieubaoca/arxchive-be/types"
)

// --- test doubles ---

type fakeAI struct {
	complete func(prompt string) (string, error)
	prompts  []string
}

func (f *fakeAI) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.complete(prompt)
}

type chunkSearch struct {
	query        string
	relativePath string
	limit        int
}

type fakeChunkStore struct {
	searches []chunkSearch
	chunks   []types.Chunk
	err      error
}

func (f *fakeChunkStore) SearchChunks(_ context.Context, query, relativePath string, limit int) ([]types.Chunk, error) {
	f.searches = append(f.searches, chunkSearch{query: query, relativePath: relativePath, limit: limit})
	return f.chunks, f.err
}

func isReformPrompt(prompt string) bool {
	return strings.HasPrefix(prompt, "Based on the chat history")
}

func testPaper() *types.Paper {
	return &types.Paper{
		EntryID: "http://arxiv.org/abs/2301.07041v1",
		Title:   "Attention Is All You Need",
		Summary: "We propose the Transformer.",
	}
}

func seedSession(t *testing.T, sessions repository.SessionStore, messages []types.Message) string {
	t.Helper()
	state := types.NewConversationState()
	state.CurrentPaper = testPaper()
	state.PDFPath = "files/2301.07041v1.Attention_Is_All_You_Need.pdf"
	state.Messages = messages
	require.NoError(t, sessions.Save(context.Background(), "sess-1", state))
	return "sess-1"
}

// --- history window ---

func TestHistoryWindowLength(t *testing.T) {
	makeMessages := func(n int) []types.Message {
		msgs := make([]types.Message, n)
		for i := range msgs {
			msgs[i] = types.Message{Role: types.RoleUser, Content: fmt.Sprintf("m%d", i)}
		}
		return msgs
	}

	tests := []struct {
		total int
		want  int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{6, 5},
		{7, 6},
		{8, 6},
		{20, 6},
	}
	for _, tt := range tests {
		window := HistoryWindow(makeMessages(tt.total))
		assert.Len(t, window, tt.want, "total=%d", tt.total)
	}
}

func TestHistoryWindowExcludesMostRecent(t *testing.T) {
	msgs := make([]types.Message, 8)
	for i := range msgs {
		msgs[i] = types.Message{Role: types.RoleUser, Content: fmt.Sprintf("m%d", i)}
	}

	window := HistoryWindow(msgs)
	require.Len(t, window, 6)
	// 8 stored messages: window is messages[1..6].
	assert.Equal(t, "m1", window[0].Content)
	assert.Equal(t, "m6", window[5].Content)
	for _, m := range window {
		assert.NotEqual(t, "m7", m.Content)
	}
}

// --- orchestrator ---

func TestAskNoActivePaper(t *testing.T) {
	sessions := repository.NewMemorySessionStore()
	svc := NewChatService(&fakeAI{}, &fakeChunkStore{}, sessions)

	_, err := svc.Ask(context.Background(), "nobody", "What dataset is used?")
	assert.ErrorIs(t, err, ErrNoActivePaper)
}

func TestAskFirstQuestionUsesRawQuery(t *testing.T) {
	sessions := repository.NewMemorySessionStore()
	id := seedSession(t, sessions, nil)

	ai := &fakeAI{complete: func(prompt string) (string, error) {
		require.False(t, isReformPrompt(prompt), "first question must not be reformed")
		return "The paper uses WMT 2014.", nil
	}}
	chunks := &fakeChunkStore{chunks: []types.Chunk{
		{Chunk: "We trained on the WMT 2014 dataset.", RelativePath: "2301.07041v1.Attention_Is_All_You_Need.pdf"},
	}}
	svc := NewChatService(ai, chunks, sessions)

	reply, err := svc.Ask(context.Background(), id, "What dataset is used?")
	require.NoError(t, err)
	assert.Equal(t, types.RoleAssistant, reply.Role)
	assert.Equal(t, "The paper uses WMT 2014.", reply.Content)

	// Retrieval got the raw question, scoped to the active paper, cap 3.
	require.Len(t, chunks.searches, 1)
	assert.Equal(t, "What dataset is used?", chunks.searches[0].query)
	assert.Equal(t, "2301.07041v1.Attention_Is_All_You_Need.pdf", chunks.searches[0].relativePath)
	assert.Equal(t, 3, chunks.searches[0].limit)

	// The answer prompt carries the question, the chunk, and an empty
	// history block.
	require.Len(t, ai.prompts, 1)
	prompt := ai.prompts[0]
	assert.Contains(t, prompt, "What dataset is used?")
	assert.Contains(t, prompt, "We trained on the WMT 2014 dataset.")
	assert.Contains(t, prompt, "<chat_history>\n\n</chat_history>")
	assert.Contains(t, prompt, `"Attention Is All You Need"`)

	state, err := sessions.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, state.Messages, 2)
	assert.Equal(t, types.RoleUser, state.Messages[0].Role)
	assert.Equal(t, types.RoleAssistant, state.Messages[1].Role)
}

func TestAskReformsFollowUpQuestion(t *testing.T) {
	sessions := repository.NewMemorySessionStore()
	seeded := make([]types.Message, 7)
	for i := range seeded {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}
		seeded[i] = types.Message{Role: role, Content: fmt.Sprintf("m%d", i)}
	}
	id := seedSession(t, sessions, seeded)

	ai := &fakeAI{complete: func(prompt string) (string, error) {
		if isReformPrompt(prompt) {
			return "What corpus does the 'Transformer' paper train on?", nil
		}
		return "answer", nil
	}}
	chunks := &fakeChunkStore{}
	svc := NewChatService(ai, chunks, sessions)

	_, err := svc.Ask(context.Background(), id, "And what about it?")
	require.NoError(t, err)

	// Single quotes are stripped before the query reaches the filter.
	require.Len(t, chunks.searches, 1)
	assert.Equal(t, "What corpus does the Transformer paper train on?", chunks.searches[0].query)

	// 8 stored messages once the question is appended: the reform
	// prompt sees m1..m6, never m0 and never the in-flight question.
	require.Len(t, ai.prompts, 2)
	reform := ai.prompts[0]
	assert.Contains(t, reform, "m1")
	assert.Contains(t, reform, "m6")
	assert.NotContains(t, reform, "m0\n")
	assert.Contains(t, reform, "And what about it?")
	assert.Contains(t, reform, "We propose the Transformer.")
}

func TestAskReformFailureFallsBackToRawQuestion(t *testing.T) {
	sessions := repository.NewMemorySessionStore()
	id := seedSession(t, sessions, []types.Message{
		{Role: types.RoleUser, Content: "earlier question"},
		{Role: types.RoleAssistant, Content: "earlier answer"},
	})

	ai := &fakeAI{complete: func(prompt string) (string, error) {
		if isReformPrompt(prompt) {
			return "", errors.New("model overloaded")
		}
		return "answer", nil
	}}
	chunks := &fakeChunkStore{}
	svc := NewChatService(ai, chunks, sessions)

	_, err := svc.Ask(context.Background(), id, "What is the attention head count?")
	require.NoError(t, err)

	require.Len(t, chunks.searches, 1)
	assert.Equal(t, "What is the attention head count?", chunks.searches[0].query)
}

func TestAskReformEmptyFallsBackToRawQuestion(t *testing.T) {
	sessions := repository.NewMemorySessionStore()
	id := seedSession(t, sessions, []types.Message{
		{Role: types.RoleUser, Content: "earlier question"},
		{Role: types.RoleAssistant, Content: "earlier answer"},
	})

	ai := &fakeAI{complete: func(prompt string) (string, error) {
		if isReformPrompt(prompt) {
			return "  ", nil
		}
		return "answer", nil
	}}
	chunks := &fakeChunkStore{}
	svc := NewChatService(ai, chunks, sessions)

	_, err := svc.Ask(context.Background(), id, "What is the attention head count?")
	require.NoError(t, err)

	require.Len(t, chunks.searches, 1)
	assert.Equal(t, "What is the attention head count?", chunks.searches[0].query)
}

func TestAskSearchFailureYieldsEmptyContext(t *testing.T) {
	sessions := repository.NewMemorySessionStore()
	id := seedSession(t, sessions, nil)

	ai := &fakeAI{complete: func(prompt string) (string, error) {
		return "Based on the available sections of the paper, I cannot answer this specific question.", nil
	}}
	chunks := &fakeChunkStore{err: errors.New("index unreachable")}
	svc := NewChatService(ai, chunks, sessions)

	reply, err := svc.Ask(context.Background(), id, "What dataset is used?")
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Content)

	require.Len(t, ai.prompts, 1)
	assert.Contains(t, ai.prompts[0], "<context>\n\n</context>")
}

func TestAskGenerationFailureKeepsUserTurn(t *testing.T) {
	sessions := repository.NewMemorySessionStore()
	id := seedSession(t, sessions, nil)

	ai := &fakeAI{complete: func(prompt string) (string, error) {
		return "", errors.New("completion backend down")
	}}
	svc := NewChatService(ai, &fakeChunkStore{}, sessions)

	_, err := svc.Ask(context.Background(), id, "What dataset is used?")
	require.Error(t, err)

	// The user turn must stay recorded so a retry is just resubmitting.
	state, err := sessions.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, types.RoleUser, state.Messages[0].Role)
	assert.Equal(t, "What dataset is used?", state.Messages[0].Content)
}

func TestResetPreservesUploadedPaths(t *testing.T) {
	sessions := repository.NewMemorySessionStore()
	id := seedSession(t, sessions, []types.Message{
		{Role: types.RoleUser, Content: "q"},
		{Role: types.RoleAssistant, Content: "a"},
	})
	state, err := sessions.Get(context.Background(), id)
	require.NoError(t, err)
	state.UploadedPaths["files/x.pdf"] = true
	require.NoError(t, sessions.Save(context.Background(), id, state))

	svc := NewChatService(&fakeAI{}, &fakeChunkStore{}, sessions)
	require.NoError(t, svc.Reset(context.Background(), id))

	state, err = sessions.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, state.CurrentPaper)
	assert.Empty(t, state.Messages)
	assert.Empty(t, state.PDFPath)
	assert.True(t, state.UploadedPaths["files/x.pdf"])
}
