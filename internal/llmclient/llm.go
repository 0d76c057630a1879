// Package llmclient wraps the external completion providers behind one
// small interface. Cross-cutting concerns (retries, rate limiting,
// logging) are layered on via Middleware rather than baked into each
// provider client.
package llmclient

import (
	"context"
	"errors"
)

var ErrEmptyCompletion = errors.New("llmclient: empty completion from model")

// Request is one completion call. Temperature zero means provider
// default; diagram-markup generation runs near 1.0 on purpose to keep
// repeated renders visually distinct.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Client is the minimal completion contract the rest of the service
// depends on.
type Client interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
	Close() error
}

// PermanentError marks an error that will not resolve with retries; the
// retry middleware stops immediately when it sees one.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}
