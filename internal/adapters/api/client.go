package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/google/uuid"
)

const maxResponseBytes = 8 << 20

var ErrUnsupportedPayload = errors.New("binary payload must be a Payload, io.Reader or []byte")

// TokenSource yields the bearer token to attach, or "" for anonymous calls.
type TokenSource interface {
	Token() string
}

type staticToken string

func (t staticToken) Token() string { return string(t) }

// Payload is a pre-encoded body that carries its own content type, such as a
// multipart form. An empty ContentType leaves the header unset.
type Payload struct {
	Body        io.Reader
	ContentType string
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	UserAgent  string
	Logger     *slog.Logger
}

// WithToken returns a copy of the client that authenticates with token instead
// of the configured TokenSource. An empty token makes anonymous calls.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.Tokens = staticToken(token)
	return &clone
}

// Call issues one request against BaseURL+path. Non-binary bodies are JSON
// encoded; binary bodies are sent untouched. Successful responses are returned
// as raw JSON without any schema check.
func (c *Client) Call(ctx context.Context, method, path string, body any, binary bool) (json.RawMessage, error) {
	reader, contentType, err := encodeBody(body, binary)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.logger().Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, &domain.TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger().Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &domain.RequestError{Status: resp.StatusCode, Detail: extractDetail(data)}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, &domain.RequestError{Status: resp.StatusCode, Detail: "server returned a malformed response"}
	}

	return json.RawMessage(trimmed), nil
}

func (c *Client) token() string {
	if c.Tokens == nil {
		return ""
	}
	return strings.TrimSpace(c.Tokens.Token())
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func encodeBody(body any, binary bool) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}

	if !binary {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(encoded), "application/json", nil
	}

	switch payload := body.(type) {
	case Payload:
		return payload.Body, payload.ContentType, nil
	case *Payload:
		return payload.Body, payload.ContentType, nil
	case io.Reader:
		return payload, "", nil
	case []byte:
		return bytes.NewReader(payload), "", nil
	default:
		return nil, "", fmt.Errorf("%w: got %T", ErrUnsupportedPayload, body)
	}
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationDetail struct {
	Msg string `json:"msg"`
}

// extractDetail reads {"detail": "..."} and the list form FastAPI uses for
// validation errors. Anything else yields "".
func extractDetail(data []byte) string {
	var payload errorBody
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var message string
	if err := json.Unmarshal(payload.Detail, &message); err == nil {
		return strings.TrimSpace(message)
	}

	var details []validationDetail
	if err := json.Unmarshal(payload.Detail, &details); err == nil {
		messages := make([]string, 0, len(details))
		for _, detail := range details {
			if msg := strings.TrimSpace(detail.Msg); msg != "" {
				messages = append(messages, msg)
			}
		}
		return strings.Join(messages, "; ")
	}

	return ""
}
