package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tieubaoca/arxchive-be/database"
	"github.com/tieubaoca/arxchive-be/repository"
	"github.com/tieubaoca/arxchive-be/types"
	"github.com/tieubaoca/arxchive-be/utils"
)

const (
	// numChunks caps the passages retrieved per question.
	numChunks = 3
	// slideWindow bounds the trailing chat history folded into prompts.
	slideWindow = 7
)

var ErrNoActivePaper = errors.New("no active paper: search for a paper and select one first")

const reformPromptTemplate = `Based on the chat history below, the paper details, and the user's question, generate a query that extends the question with the chat history provided. The query should be in natural language.
Answer with only the query. Do not add any explanation.
<Paper Details>
Title: %s
Abstract: %s
</Paper Details>
<chat_history>
%s
</chat_history>
<question>
%s
</question>`

const answerPromptTemplate = `You are an expert academic researcher specializing in analyzing research papers. You are currently discussing the paper: "%s"

Role: You are a knowledgeable guide helping users understand this specific research paper. You have deep expertise in the paper's content and can explain complex concepts clearly.

Context Rules:
- Base your answers solely on the provided paper context between <context></context> tags
- Consider the conversation history between <chat_history></chat_history> tags for continuity
- If information isn't in the context, say: "Based on the available sections of the paper, I cannot answer this specific question."
- Never mention that you're using context or chat history

Response Guidelines:
- Be precise and academic in your explanations
- Support answers with specific details from the paper
- Use clear, professional language
- Connect new information with previously discussed points when relevant
- Break down complex concepts into understandable parts
- Stay focused on the paper's content and findings
- Ensure mathematical expressions are correctly formatted using LaTeX-style syntax (e.g., wrap inline math expressions with ` + "`$...$`" + ` and block math with ` + "`$$...$$`" + ` for proper rendering)
- Provide clear descriptions of equations and symbols when introducing them, to aid comprehension
- Format responses for clarity, with headings or bullet points if helpful for readability

<chat_history>
%s
</chat_history>

<context>
%s
</context>

<question>
%s
</question>

Answer (maintaining academic tone and paper-specific focus):`

// ChatService is the conversation orchestrator: one Ask call per
// submitted question, producing an assistant answer and appending both
// turns to the session's message log.
type ChatService struct {
	ai       AIService
	chunks   database.ChunkStore
	sessions repository.SessionStore
}

func NewChatService(ai AIService, chunks database.ChunkStore, sessions repository.SessionStore) *ChatService {
	return &ChatService{
		ai:       ai,
		chunks:   chunks,
		sessions: sessions,
	}
}

// Ask answers a question about the session's active paper. The user
// turn is persisted before any external call, so a failure mid-turn
// leaves a consistent "user asked, no answer yet" state; retrying is
// just resubmitting.
func (s *ChatService) Ask(ctx context.Context, sessionID, question string) (*types.Message, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if state.CurrentPaper == nil {
		return nil, ErrNoActivePaper
	}

	state.Messages = append(state.Messages, types.Message{Role: types.RoleUser, Content: question})
	if err := s.sessions.Save(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	// The window excludes the just-appended question so the model is
	// never asked to reformulate against itself.
	window := HistoryWindow(state.Messages)

	searchQuery := question
	if len(window) > 0 {
		reformed, err := s.reformQuery(ctx, state.CurrentPaper, window, question)
		if err != nil {
			log.Printf("query reformation failed, falling back to raw question: %v", err)
		} else if reformed != "" {
			searchQuery = reformed
		}
	}

	chunks, err := s.chunks.SearchChunks(ctx, searchQuery, utils.RelativePath(state.PDFPath), numChunks)
	if err != nil {
		// Empty context is valid prompt input; the model answers with
		// the fixed fallback sentence.
		log.Printf("chunk search failed for %s: %v", state.PDFPath, err)
		chunks = nil
	}

	prompt := buildAnswerPrompt(state.CurrentPaper, window, chunks, question)
	answer, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	reply := types.Message{Role: types.RoleAssistant, Content: answer}
	state.Messages = append(state.Messages, reply)
	if err := s.sessions.Save(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return &reply, nil
}

// Reset clears the active conversation, keeping the uploaded-paths
// registry for the rest of the session.
func (s *ChatService) Reset(ctx context.Context, sessionID string) error {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	state.Reset()
	return s.sessions.Save(ctx, sessionID, state)
}

// HistoryWindow returns the most recent slideWindow-1 messages,
// excluding the single most recent one (the in-flight question).
// Old turns are dropped, not summarized.
func HistoryWindow(messages []types.Message) []types.Message {
	if len(messages) <= 1 {
		return nil
	}
	start := len(messages) - slideWindow
	if start < 0 {
		start = 0
	}
	return messages[start : len(messages)-1]
}

// reformQuery rewrites the question into a standalone search query by
// folding in the history window and the paper's metadata. Single
// quotes are stripped so the result never breaks filter syntax.
func (s *ChatService) reformQuery(ctx context.Context, paper *types.Paper, window []types.Message, question string) (string, error) {
	prompt := fmt.Sprintf(reformPromptTemplate, paper.Title, paper.Summary, formatHistory(window), question)
	reformed, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	reformed = strings.ReplaceAll(reformed, "'", "")
	return strings.TrimSpace(reformed), nil
}

func buildAnswerPrompt(paper *types.Paper, window []types.Message, chunks []types.Chunk, question string) string {
	return fmt.Sprintf(answerPromptTemplate, paper.Title, formatHistory(window), formatChunks(chunks), question)
}

func formatHistory(window []types.Message) string {
	var sb strings.Builder
	for _, msg := range window {
		sb.WriteString(msg.Role)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatChunks(chunks []types.Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Chunk)
	}
	return strings.Join(parts, "\n\n")
}
