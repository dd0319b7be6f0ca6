package toxicity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClassifier_NestedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		var req struct {
			Inputs string `json:"inputs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "some text", req.Inputs)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[{"label":"toxic","score":0.91},{"label":"neutral","score":0.09}]]`))
	}))
	defer server.Close()

	c := NewHTTPClassifier(server.URL, "secret-token", server.Client())
	scores, err := c.Classify(context.Background(), "some text")
	require.NoError(t, err)

	require.Len(t, scores, 2)
	assert.Equal(t, "toxic", scores[0].Label)
	assert.InDelta(t, 0.91, scores[0].Score, 1e-9)
}

func TestHTTPClassifier_FlatResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"offensive","score":0.5}]`))
	}))
	defer server.Close()

	c := NewHTTPClassifier(server.URL, "", server.Client())
	scores, err := c.Classify(context.Background(), "text")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "offensive", scores[0].Label)
}

func TestHTTPClassifier_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[[{"label":"toxic","score":0.8}]]`))
	}))
	defer server.Close()

	c := NewHTTPClassifier(server.URL, "", server.Client())
	scores, err := c.Classify(context.Background(), "text")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.EqualValues(t, 2, calls.Load())
}

func TestHTTPClassifier_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewHTTPClassifier(server.URL, "", server.Client())
	_, err := c.Classify(context.Background(), "text")
	assert.Error(t, err)
	assert.EqualValues(t, 1, calls.Load(), "4xx responses are not retried")
}

func TestHTTPClassifier_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server can detect the client disconnect;
		// with an unread body r.Context() is never canceled and Close hangs.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewHTTPClassifier(server.URL, "", server.Client())
	_, err := c.Classify(ctx, "text")
	assert.Error(t, err)
}

func TestHTTPClassifier_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer server.Close()

	c := NewHTTPClassifier(server.URL, "", server.Client())
	_, err := c.Classify(context.Background(), "text")
	assert.Error(t, err)
}
