package types

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single turn in the conversation. Messages are
// append-only; insertion order is chronological.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chunk is a retrieved text passage belonging to one paper, used as
// grounding context for an answer. Never stored or mutated locally.
type Chunk struct {
	Chunk        string `json:"chunk"`
	RelativePath string `json:"relative_path"`
}

const (
	TypeWebsocketPing  = "ping"
	TypeWebsocketPong  = "pong"
	TypeWebsocketAsk   = "ask"
	TypeWebsocketError = "error"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebsocketAskPayload struct {
	Question string `json:"question"`
}

type WebsocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebsocketAnswerPayload struct {
	Message Message `json:"message"`
}
