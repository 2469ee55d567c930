package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/regaudit/internal/llm"
)

func TestOllamaEmbedder_Batches(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/api/embed", r.URL.Path)
		var req ollamaEmbedRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)

		resp := ollamaEmbedResponse{}
		for i := range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{float32(i), 1})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 2, srv.URL+"/")
	texts := make([]string, maxBatchSize+5)
	for i := range texts {
		texts[i] = "chunk"
	}

	vecs, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vecs, len(texts))
	assert.EqualValues(t, 2, requests.Load())
	assert.Equal(t, []float32{4, 1}, vecs[maxBatchSize+4])
	assert.Equal(t, "ollama/nomic-embed-text", e.Name())
}

func TestOllamaEmbedder_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewOllamaEmbedder("m", 2, srv.URL).Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.True(t, llm.IsRateLimit(err))
}

func TestOpenAIEmbedder_OrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","model":"text-embedding-3-small","data":[
			{"object":"embedding","index":1,"embedding":[0,1]},
			{"object":"embedding","index":0,"embedding":[1,0]}
		]}`))
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder("key", ModelTextEmbedding3Small, srv.URL)
	vecs, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
	assert.Equal(t, 1536, e.Dimensions())
}

type staticEmbedder struct{ vec []float32 }

func (s staticEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.vec == nil {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}
func (s staticEmbedder) Dimensions() int { return len(s.vec) }
func (s staticEmbedder) Name() string    { return "static" }

func TestToChromemFunc(t *testing.T) {
	vec, err := ToChromemFunc(staticEmbedder{vec: []float32{1, 0}})(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)

	_, err = ToChromemFunc(staticEmbedder{})(context.Background(), "x")
	assert.ErrorIs(t, err, errNoVector)
}

func TestNew(t *testing.T) {
	e, err := New("", "", "")
	require.NoError(t, err)
	assert.Nil(t, e)

	e, err = New("ollama", "", "http://example:11434")
	require.NoError(t, err)
	assert.Equal(t, "ollama/nomic-embed-text", e.Name())

	t.Setenv("OPENAI_API_KEY", "")
	_, err = New("openai", "", "")
	assert.Error(t, err)

	_, err = New("cohere", "", "")
	assert.Error(t, err)
}
