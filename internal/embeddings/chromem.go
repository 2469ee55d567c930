package embeddings

import (
	"context"
	"errors"

	chromem "github.com/philippgille/chromem-go"
)

var errNoVector = errors.New("embedder returned no vector")

// ToChromemFunc adapts an Embedder to chromem's one-text-at-a-time
// EmbeddingFunc.
func ToChromemFunc(e Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vecs, err := e.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(vecs) == 0 || len(vecs[0]) == 0 {
			return nil, errNoVector
		}
		return vecs[0], nil
	}
}
