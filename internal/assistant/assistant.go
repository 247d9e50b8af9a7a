package assistant

import (
	"context"
	"errors"
)

// ErrCircuitOpen is returned while the remote assistant circuit is open.
var ErrCircuitOpen = errors.New("assistant circuit open")

// Client answers free-form questions about a user's journal. Implementations:
// a remote chat backend over HTTP, and a local Ollama-backed engine that keeps
// the assistant usable fully offline.
type Client interface {
	Ask(ctx context.Context, userID int64, question string) (string, error)
}
