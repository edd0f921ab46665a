package ghclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spiffcs/issuebot/internal/log"
)

// Request is a GraphQL request payload.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// graphqlResponse represents a generic GraphQL response.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// TransportError reports a GraphQL call that did not succeed: the request
// failed, the server answered with a non-200 status, or the response
// carried GraphQL errors.
type TransportError struct {
	Operation  string
	StatusCode int
	Body       string
	Messages   []string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	case len(e.Messages) > 0:
		return fmt.Sprintf("%s: %s", e.Operation, strings.Join(e.Messages, "; "))
	default:
		return fmt.Sprintf("%s: request failed with status %d: %s", e.Operation, e.StatusCode, e.Body)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Executor sends a GraphQL request and returns the data member of the
// response. When the response carries GraphQL errors the data is returned
// together with a *TransportError.
type Executor interface {
	Execute(ctx context.Context, req Request) (json.RawMessage, error)
}

// HTTPExecutor executes GraphQL requests over HTTP. Authentication is the
// responsibility of the http.Client.
type HTTPExecutor struct {
	client   *http.Client
	endpoint string
}

// NewHTTPExecutor creates an executor posting to endpoint.
func NewHTTPExecutor(client *http.Client, endpoint string) *HTTPExecutor {
	return &HTTPExecutor{client: client, endpoint: endpoint}
}

// Execute posts req and decodes the response envelope.
func (x *HTTPExecutor) Execute(ctx context.Context, req Request) (json.RawMessage, error) {
	op := req.OperationName
	if op == "" {
		op = "graphql"
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, x.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := x.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Operation: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Operation: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	log.Debug("graphql request", "operation", op, "status", resp.StatusCode, "duration", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode != http.StatusOK {
		log.Trace("graphql response", "operation", op, "body", string(respBody))
		return nil, &TransportError{Operation: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return nil, &TransportError{Operation: op, StatusCode: resp.StatusCode, Body: string(respBody), Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	if len(gqlResp.Errors) > 0 {
		messages := make([]string, 0, len(gqlResp.Errors))
		for _, e := range gqlResp.Errors {
			log.Debug("GraphQL error", "operation", op, "message", e.Message, "type", e.Type)
			messages = append(messages, e.Message)
		}
		return gqlResp.Data, &TransportError{Operation: op, StatusCode: resp.StatusCode, Messages: messages}
	}

	return gqlResp.Data, nil
}

// hasData reports whether a response carried a usable data member.
func hasData(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
