package llmclient

import (
	"context"
	"sync"
)

// FakeClient returns scripted completions for offline runs and tests.
// Responses are consumed in order; the last one repeats. An entry that
// is an error is returned instead of text.
type FakeClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int

	// Requests records every request seen, for assertions.
	Requests []Request
}

// NewFakeClient scripts the given responses in order.
func NewFakeClient(responses ...string) *FakeClient {
	if len(responses) == 0 {
		responses = []string{"ok"}
	}
	return &FakeClient{responses: responses}
}

// FailThenSucceed returns a fake whose first n calls fail with err.
func FailThenSucceed(n int, err error, response string) *FakeClient {
	f := NewFakeClient(response)
	for i := 0; i < n; i++ {
		f.errs = append(f.errs, err)
	}
	return f
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeClient) Complete(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
	i := f.calls
	f.calls++
	if i < len(f.errs) {
		return "", f.errs[i]
	}
	i -= len(f.errs)
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}
