package embed

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9]+`)

// StaticEmbedder produces deterministic hash-based vectors with no external
// dependencies: no model download, no network call, no native runtime. It
// trades semantic quality for availability, useful for tests and for
// environments where a real model cannot be loaded.
type StaticEmbedder struct {
	dims int
}

// NewStaticEmbedder returns a StaticEmbedder producing vectors of dims
// dimensions (DefaultDimensions if dims <= 0).
func NewStaticEmbedder(dims int) *StaticEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &StaticEmbedder{dims: dims}
}

func (e *StaticEmbedder) Dimensions() int   { return e.dims }
func (e *StaticEmbedder) ModelName() string { return "static-hash" }

// Embed hashes each token of text into a bucket of the output vector and
// normalizes the result, so that repeated words reinforce the same
// dimensions and unrelated strings land in mostly-disjoint buckets.
func (e *StaticEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e *StaticEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dims)
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return vec
	}
	for _, tok := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		bucket := int(h.Sum32()) % e.dims
		if bucket < 0 {
			bucket += e.dims
		}
		vec[bucket] += 1
	}
	return normalize(vec)
}
