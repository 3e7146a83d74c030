package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/pkg/errors"
)

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, "llama3.2:1b", 0.7, 150, 5*time.Second, time.Second)
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[{"name":"llama3.2:1b"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	assert.NoError(t, c.Health(context.Background()))
}

func TestClient_HealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := newTestClient(srv.URL)
	err := c.Health(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAssistantOffline))
}

func TestClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2:1b", req["model"])
		assert.Equal(t, false, req["stream"])
		assert.Contains(t, req["prompt"], "User: what about AAPL?")

		opts := req["options"].(map[string]interface{})
		assert.InDelta(t, 0.7, opts["temperature"], 0.001)
		assert.EqualValues(t, 150, opts["max_tokens"])

		w.Write([]byte(`{"response":"AAPL is trading at $230.00."}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	reply, err := c.Generate(context.Background(), "You are an advisor.\n\nUser: what about AAPL?\nAssistant:")
	require.NoError(t, err)
	assert.Equal(t, "AAPL is trading at $230.00.", reply)
}

func TestClient_GenerateErrors(t *testing.T) {
	t.Run("server error maps to offline", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		_, err := c.Generate(context.Background(), "hi")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrAssistantOffline))
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		_, err := c.Generate(context.Background(), "hi")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrParse))
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{"response":"late"}`))
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := newTestClient(srv.URL)
		_, err := c.Generate(ctx, "hi")
		assert.Error(t, err)
	})
}
