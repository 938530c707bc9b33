package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docindex/internal/domain"
	"docindex/internal/embedding"
)

const testDimension = 4

// embedServer fakes the embedContent endpoint. The respond hook decides the
// response per request based on the embedded text and the per-text attempt
// count (1-based).
type embedServer struct {
	t *testing.T

	mu       sync.Mutex
	attempts map[string]int
	respond  func(text string, attempt int, w http.ResponseWriter)
}

func newEmbedServer(t *testing.T, respond func(text string, attempt int, w http.ResponseWriter)) (*embedServer, *httptest.Server) {
	s := &embedServer{t: t, attempts: make(map[string]int), respond: respond}
	return s, httptest.NewServer(s)
}

func (s *embedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	}
	require.NoError(s.t, json.NewDecoder(r.Body).Decode(&req))
	require.NotEmpty(s.t, req.Content.Parts)
	text := req.Content.Parts[0].Text

	s.mu.Lock()
	s.attempts[text]++
	attempt := s.attempts[text]
	s.mu.Unlock()

	s.respond(text, attempt, w)
}

func (s *embedServer) attemptCount(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[text]
}

func writeVector(w http.ResponseWriter, dim int) {
	values := make([]float64, dim)
	for i := range values {
		values[i] = float64(i) * 0.5
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"embedding": map[string]any{"values": values}})
}

func newTestClient(t *testing.T, url string, onProgress embedding.ProgressFunc) *Client {
	t.Helper()
	client, err := NewClient(Config{
		APIKey:            "test-key",
		BaseURL:           url,
		Dimension:         testDimension,
		RequestsPerSecond: 10000,
		Burst:             100,
		Policy:            embedding.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond},
		OnProgress:        onProgress,
	})
	require.NoError(t, err)
	return client
}

func chunksOf(texts ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{Text: text, Index: i, Strategy: "fixed"}
	}
	return chunks
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestEmbedOne_Success(t *testing.T) {
	_, server := newEmbedServer(t, func(text string, attempt int, w http.ResponseWriter) {
		writeVector(w, testDimension)
	})
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	vector, err := client.EmbedOne(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Len(t, vector, testDimension)
}

func TestEmbedOne_EmptyTextSkipsNetwork(t *testing.T) {
	srv, server := newEmbedServer(t, func(text string, attempt int, w http.ResponseWriter) {
		writeVector(w, testDimension)
	})
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	vector, err := client.EmbedOne(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, make([]float64, testDimension), vector)
	assert.Equal(t, 0, srv.attemptCount("   "))
}

func TestEmbedOne_RetriesTransientThenSucceeds(t *testing.T) {
	srv, server := newEmbedServer(t, func(text string, attempt int, w http.ResponseWriter) {
		if attempt < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeVector(w, testDimension)
	})
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	vector, err := client.EmbedOne(context.Background(), "flaky")
	require.NoError(t, err)
	assert.Len(t, vector, testDimension)
	assert.Equal(t, 3, srv.attemptCount("flaky"))
}

func TestEmbedOne_PermanentFailureNotRetried(t *testing.T) {
	srv, server := newEmbedServer(t, func(text string, attempt int, w http.ResponseWriter) {
		http.Error(w, "invalid argument", http.StatusBadRequest)
	})
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	_, err := client.EmbedOne(context.Background(), "rejected")
	require.Error(t, err)
	assert.False(t, embedding.IsTransient(err))
	assert.Equal(t, 1, srv.attemptCount("rejected"))
}

func TestEmbedOne_DimensionMismatchNotRetried(t *testing.T) {
	srv, server := newEmbedServer(t, func(text string, attempt int, w http.ResponseWriter) {
		writeVector(w, testDimension+1)
	})
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	_, err := client.EmbedOne(context.Background(), "wrong size")
	require.ErrorIs(t, err, embedding.ErrDimensionMismatch)
	assert.Equal(t, 1, srv.attemptCount("wrong size"))
}

func TestEmbedOne_RateLimitClassified(t *testing.T) {
	_, server := newEmbedServer(t, func(text string, attempt int, w http.ResponseWriter) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	client, err := NewClient(Config{
		APIKey:            "test-key",
		BaseURL:           server.URL,
		Dimension:         testDimension,
		RequestsPerSecond: 10000,
		Burst:             100,
		Policy:            embedding.NoRetry(),
	})
	require.NoError(t, err)

	_, err = client.EmbedOne(context.Background(), "throttled")
	require.Error(t, err)

	var te *embedding.TransientError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.RateLimited)
	assert.Equal(t, time.Second, te.RetryAfter)
}

func TestEmbedAll_FailSoftPreservesOrder(t *testing.T) {
	srv, server := newEmbedServer(t, func(text string, attempt int, w http.ResponseWriter) {
		if text == "chunk-3" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeVector(w, testDimension)
	})
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	chunks := chunksOf("chunk-0", "chunk-1", "chunk-2", "chunk-3", "chunk-4", "chunk-5")
	results := client.EmbedAll(context.Background(), chunks)

	require.Len(t, results, len(chunks))
	for i, res := range results {
		assert.Equal(t, i, res.Index)
		if i == 3 {
			assert.Equal(t, domain.EmbedFailed, res.Status)
			assert.Error(t, res.Err)
			assert.Nil(t, res.Vector)
		} else {
			assert.Equal(t, domain.EmbedOK, res.Status)
			assert.Len(t, res.Vector, testDimension)
		}
	}
	// The failing chunk burned the full attempt budget.
	assert.Equal(t, 3, srv.attemptCount("chunk-3"))
}

func TestEmbedAll_ProgressPerChunk(t *testing.T) {
	_, server := newEmbedServer(t, func(text string, attempt int, w http.ResponseWriter) {
		if text == "bad" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeVector(w, testDimension)
	})
	defer server.Close()

	var calls []string
	client := newTestClient(t, server.URL, func(completed, total int) {
		calls = append(calls, fmt.Sprintf("%d/%d", completed, total))
	})

	client.EmbedAll(context.Background(), chunksOf("ok", "bad", "fine"))
	assert.Equal(t, []string{"1/3", "2/3", "3/3"}, calls)
}

func TestEmbedAll_EmptyInput(t *testing.T) {
	_, server := newEmbedServer(t, func(text string, attempt int, w http.ResponseWriter) {
		writeVector(w, testDimension)
	})
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	results := client.EmbedAll(context.Background(), nil)
	assert.Empty(t, results)
}
