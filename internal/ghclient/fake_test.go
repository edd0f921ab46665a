package ghclient

import (
	"context"
	"encoding/json"
)

// fakeExecutor returns canned responses and records requests.
type fakeExecutor struct {
	requests []Request
	data     json.RawMessage
	err      error
}

func (f *fakeExecutor) Execute(_ context.Context, req Request) (json.RawMessage, error) {
	f.requests = append(f.requests, req)
	return f.data, f.err
}
