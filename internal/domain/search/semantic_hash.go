package search

import (
	"errors"
	"math/rand"
	"sync"
)

const (
	defaultSemanticHashPlanes = 64
	defaultSemanticHashSeed   = 2024
)

// semanticHasher buckets embedding vectors by random hyperplane projection:
// each plane contributes one sign bit, so near-identical queries collapse to
// the same 64-bit key without a vector index. Planes are derived lazily from
// the seed once the embedding dimension is known.
type semanticHasher struct {
	planeCount int
	seed       int64

	mu     sync.RWMutex
	dims   int
	planes [][]float32
}

func newSemanticHasher(planeCount int, seed int64) *semanticHasher {
	if planeCount <= 0 {
		planeCount = defaultSemanticHashPlanes
	}
	return &semanticHasher{planeCount: planeCount, seed: seed}
}

func (h *semanticHasher) Hash(vector []float32) (uint64, bool, error) {
	if h == nil || len(vector) == 0 {
		return 0, false, nil
	}
	planes, err := h.planesFor(len(vector))
	if err != nil {
		return 0, false, err
	}

	var hash uint64
	for i, plane := range planes {
		if i == 64 {
			break
		}
		if dot(vector, plane) >= 0 {
			hash |= 1 << (63 - i)
		}
	}
	return hash, true, nil
}

func (h *semanticHasher) planesFor(dims int) ([][]float32, error) {
	if dims <= 0 {
		return nil, errors.New("semantic hasher requires positive dimension")
	}

	h.mu.RLock()
	if h.dims == dims {
		planes := h.planes
		h.mu.RUnlock()
		return planes, nil
	}
	h.mu.RUnlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dims == dims {
		return h.planes, nil
	}

	// The seeded source keeps hashes stable across restarts.
	rng := rand.New(rand.NewSource(h.seed))
	planes := make([][]float32, h.planeCount)
	for i := range planes {
		plane := make([]float32, dims)
		for j := range plane {
			plane[j] = float32(rng.NormFloat64())
		}
		planes[i] = plane
	}
	h.planes = planes
	h.dims = dims
	return planes, nil
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
