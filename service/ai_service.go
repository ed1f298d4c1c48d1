package service

import "context"

// AIService is a stateless text-completion call: one prompt in, one
// completion out. Conversation memory lives in the prompt, never in
// the backend.
type AIService interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
