package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Client{
		BaseURL:    server.URL + "/api/v1",
		HTTPClient: server.Client(),
		Tokens:     staticToken(token),
		UserAgent:  "legalai/test",
	}
}

func TestCallAttachesBearerAndEncodesJSON(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/search/query", r.URL.Path)
		assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "legalai/test", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"query":"estafa"}`, string(body))

		_, _ = w.Write([]byte(`{"ok":true}`))
	}, "T1")

	raw, err := client.Call(context.Background(), http.MethodPost, "/search/query", map[string]string{"query": "estafa"}, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestCallOmitsBearerWhenAnonymous(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`[]`))
	}, "")

	raw, err := client.Call(context.Background(), http.MethodGet, "/cases/", nil, false)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestCallBinaryPayloadPassesThrough(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "multipart/form-data; boundary=xyz", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "--xyz raw bytes", string(body))
		w.WriteHeader(http.StatusNoContent)
	}, "T1")

	raw, err := client.Call(context.Background(), http.MethodPost, "/documents/generate", Payload{
		Body:        strings.NewReader("--xyz raw bytes"),
		ContentType: "multipart/form-data; boundary=xyz",
	}, true)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestCallBinaryReaderDoesNotForceContentType(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{}`))
	}, "")

	_, err := client.Call(context.Background(), http.MethodPost, "/upload", strings.NewReader("blob"), true)
	require.NoError(t, err)
}

func TestCallRejectsUnsupportedBinaryBody(t *testing.T) {
	t.Parallel()

	client := &Client{BaseURL: "http://127.0.0.1:1"}
	_, err := client.Call(context.Background(), http.MethodPost, "/upload", 42, true)
	assert.ErrorIs(t, err, ErrUnsupportedPayload)
}

func TestCallErrorResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantAuth   bool
		wantStatus int
	}{
		{name: "detail string", status: http.StatusBadRequest, body: `{"detail":"Email already registered"}`, wantMsg: "Email already registered", wantStatus: 400},
		{name: "validation list", status: http.StatusUnprocessableEntity, body: `{"detail":[{"loc":["body","query"],"msg":"field required"},{"msg":"value is not a valid integer"}]}`, wantMsg: "field required; value is not a valid integer", wantStatus: 422},
		{name: "no detail", status: http.StatusInternalServerError, body: `{"error":"Internal Server Error"}`, wantMsg: "request failed with status 500", wantStatus: 500},
		{name: "not json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantMsg: "request failed with status 502", wantStatus: 502},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"detail":"Could not validate credentials"}`, wantMsg: "Could not validate credentials", wantAuth: true, wantStatus: 401},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}, "T1")

			_, err := client.Call(context.Background(), http.MethodGet, "/auth/me", nil, false)
			require.Error(t, err)
			assert.Equal(t, tc.wantMsg, err.Error())

			var requestErr *domain.RequestError
			require.ErrorAs(t, err, &requestErr)
			assert.Equal(t, tc.wantStatus, requestErr.Status)
			if tc.wantAuth {
				assert.ErrorIs(t, err, domain.ErrAuthentication)
			} else {
				assert.ErrorIs(t, err, domain.ErrRequest)
			}
		})
	}
}

func TestCallMalformedSuccessBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [`))
	}, "")

	_, err := client.Call(context.Background(), http.MethodPost, "/search/query", map[string]string{}, false)
	assert.ErrorIs(t, err, domain.ErrRequest)
}

func TestCallTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := &Client{BaseURL: baseURL}
	_, err := client.Call(context.Background(), http.MethodGet, "/auth/me", nil, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Contains(t, err.Error(), "could not reach the server")
}

func TestWithTokenDoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	original := &Client{BaseURL: "http://example.test", Tokens: staticToken("T1")}
	anonymous := original.WithToken("")

	assert.Equal(t, "T1", original.token())
	assert.Equal(t, "", anonymous.token())
	assert.Equal(t, original.BaseURL, anonymous.BaseURL)
}
