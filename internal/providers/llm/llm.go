package llm

import "context"

// Turn is one ordered entry of the conversation sent to the model.
type Turn struct {
	Role    string // "user" | "assistant"
	Content string
}

type Provider interface {
	// StreamReply returns a stream of incremental text chunks for the
	// assistant's reply to the conversation so far. The chunk channel is
	// closed when the stream ends; a stream failure is delivered on errs.
	StreamReply(ctx context.Context, turns []Turn) (chunks <-chan string, errs <-chan error)
	Close() error
}
