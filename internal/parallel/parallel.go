// Package parallel splits independent work items across goroutines.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on CPU count. Work items are whole
// attacks, so a single item is already worth a goroutine.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1,
	}
}

// Chunk is the half-open item range [Start, End).
type Chunk struct {
	Start, End int
}

// Len returns the number of items in c.
func (c Chunk) Len() int { return c.End - c.Start }

// Chunks splits [0, n) into at most NumWorkers contiguous ranges of at least
// MinChunkSize items. Disabled configs get a single range.
func Chunks(n int, cfg Config) []Chunk {
	if n <= 0 {
		return nil
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2*max(cfg.MinChunkSize, 1) {
		return []Chunk{{0, n}}
	}

	size := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)
	chunks := make([]Chunk, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		chunks = append(chunks, Chunk{start, min(start+size, n)})
	}
	return chunks
}

// ForChunks runs f once per chunk of [0, n), each in its own goroutine.
// The first error cancels the context passed to the other chunks and is
// returned once all of them have finished.
func ForChunks(ctx context.Context, n int, cfg Config, f func(ctx context.Context, c Chunk) error) error {
	chunks := Chunks(n, cfg)
	if len(chunks) == 1 {
		return f(ctx, chunks[0])
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, c := range chunks {
		g.Go(func() error {
			return f(ctx, c)
		})
	}
	return g.Wait()
}
