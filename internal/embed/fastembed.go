package embed

import (
	"context"
	"sync"

	fastembed "github.com/anush008/fastembed-go"

	"github.com/timbuchinger/context-cache/internal/ctxerrors"
)

// modelDimensions maps fastembed models to their embedding dimensions.
var modelDimensions = map[fastembed.EmbeddingModel]int{
	fastembed.BGESmallENV15: 384,
	fastembed.BGESmallEN:    384,
	fastembed.BGEBaseENV15:  768,
	fastembed.AllMiniLML6V2: 384,
}

// FastEmbedder generates embeddings with a local ONNX transformer via
// fastembed-go, avoiding any network round-trip at query time once the
// model is cached on disk.
type FastEmbedder struct {
	mu        sync.RWMutex
	model     *fastembed.FlagEmbedding
	modelName string
	dims      int
}

// NewFastEmbedder loads modelName (a fastembed.EmbeddingModel string) with
// its cache directory at cacheDir, downloading it on first use.
func NewFastEmbedder(modelName, cacheDir string) (*FastEmbedder, error) {
	model := fastembed.EmbeddingModel(modelName)
	dims, ok := modelDimensions[model]
	if !ok {
		dims = DefaultDimensions
	}

	showProgress := false
	flag, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                model,
		CacheDir:             cacheDir,
		MaxLength:            512,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, ctxerrors.InvalidInput("failed to initialize local embedding model", err)
	}

	return &FastEmbedder{model: flag, modelName: modelName, dims: dims}, nil
}

func (e *FastEmbedder) Dimensions() int   { return e.dims }
func (e *FastEmbedder) ModelName() string { return e.modelName }

// Embed generates a single passage embedding. The engine calls the same
// Embedder for both queries and documents; fastembed's passage/query prefix
// distinction is not exposed, keeping the interface uniform per spec §4.4.
func (e *FastEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	vecs, err := e.model.PassageEmbed([]string{text}, 256)
	if err != nil {
		return nil, ctxerrors.InvalidInput("failed to compute embedding", err)
	}
	if len(vecs) == 0 {
		return nil, ctxerrors.InvalidInput("embedding model returned no vectors", nil)
	}
	return vecs[0], nil
}

// Close releases the underlying ONNX runtime resources.
func (e *FastEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model != nil {
		return e.model.Destroy()
	}
	return nil
}
