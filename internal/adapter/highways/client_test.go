package highways

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/road-closures-service/internal/observability"
)

const testKey = "test-subscription-key"

func testClient(url string) *Client {
	return NewClient(testKey, url, 5*time.Second,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Fetch_Success(t *testing.T) {
	body := `{"D2Payload":{"situation":[{"situationRecord":[]},{"situationRecord":[]}]}}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, testKey, r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		assert.Equal(t, "application/json", r.Header.Get("X-Response-MediaType"))
		assert.Equal(t, "DATEXII", r.Header.Get("X-Djson-Format"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(body))
		require.NoError(t, err)
	}))
	defer srv.Close()

	raw, payload, err := testClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte(body), raw, "raw body is returned verbatim")
	assert.Len(t, payload.D2Payload.Situations, 2)
}

func TestClient_Fetch_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "subscription key invalid", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, _, err := testClient(srv.URL).Fetch(context.Background())
	require.ErrorIs(t, err, ErrUpstreamStatus)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_Fetch_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte("<html>definitely not json</html>"))
		require.NoError(t, err)
	}))
	defer srv.Close()

	_, _, err := testClient(srv.URL).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrDecode)
}

func TestClient_Fetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	_, _, err := testClient(srv.URL).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestClient_Fetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := testClient(srv.URL).Fetch(ctx)
	assert.ErrorIs(t, err, ErrNetwork)
}
