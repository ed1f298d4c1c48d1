package types

// SearchParams holds the last discovery form submitted in the session.
type SearchParams struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	StartYear  int    `json:"start_year"`
	EndYear    int    `json:"end_year"`
}

// ConversationState is the per-user session state. One instance per
// session; mutated only by the orchestrator within a single turn.
type ConversationState struct {
	CurrentPaper  *Paper          `json:"current_paper,omitempty"`
	Messages      []Message       `json:"messages"`
	PDFPath       string          `json:"pdf_path,omitempty"`
	UploadedPaths map[string]bool `json:"uploaded_paths"`
	SearchParams  SearchParams    `json:"search_params"`
	Papers        []Paper         `json:"papers,omitempty"`
}

// NewConversationState returns an empty state with an initialized
// uploaded-paths registry.
func NewConversationState() *ConversationState {
	return &ConversationState{
		UploadedPaths: make(map[string]bool),
	}
}

// Reset clears the active conversation. The uploaded-paths registry is
// deliberately preserved: it tracks which local files have already been
// pushed to the staging area for the whole session lifetime.
func (s *ConversationState) Reset() {
	s.CurrentPaper = nil
	s.Messages = nil
	s.PDFPath = ""
}
