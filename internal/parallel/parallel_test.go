package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestChunks(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}

	chunks := Chunks(10, cfg)
	if len(chunks) != 4 {
		t.Fatalf("Expected 4 chunks, got %d: %v", len(chunks), chunks)
	}

	next := 0
	for _, c := range chunks {
		if c.Start != next {
			t.Errorf("Chunk %v does not start at %d", c, next)
		}
		if c.Len() <= 0 {
			t.Errorf("Empty chunk %v", c)
		}
		next = c.End
	}
	if next != 10 {
		t.Errorf("Chunks end at %d, expected 10", next)
	}
}

func TestChunks_Sequential(t *testing.T) {
	chunks := Chunks(100, Config{Enabled: false})
	if len(chunks) != 1 || chunks[0] != (Chunk{0, 100}) {
		t.Errorf("Expected a single chunk, got %v", chunks)
	}

	if got := Chunks(0, DefaultConfig()); got != nil {
		t.Errorf("Expected no chunks for n=0, got %v", got)
	}
}

func TestChunks_MinChunkSize(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 8, MinChunkSize: 16}

	for _, c := range Chunks(40, cfg) {
		if c.End != 40 && c.Len() < 16 {
			t.Errorf("Chunk %v is smaller than MinChunkSize", c)
		}
	}

	// Too few items to split.
	if got := Chunks(20, cfg); len(got) != 1 {
		t.Errorf("Expected 1 chunk for 20 items, got %v", got)
	}
}

func TestForChunks(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}

	var counter int64
	n := 1000
	err := ForChunks(context.Background(), n, cfg, func(_ context.Context, c Chunk) error {
		atomic.AddInt64(&counter, int64(c.Len()))
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestForChunks_Error(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}
	boom := errors.New("boom")

	err := ForChunks(context.Background(), 8, cfg, func(ctx context.Context, c Chunk) error {
		if c.Start == 0 {
			return boom
		}
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
}

func BenchmarkForChunks(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	for i := 0; i < b.N; i++ {
		var sum int64
		_ = ForChunks(context.Background(), n, cfg, func(_ context.Context, c Chunk) error {
			var local int64
			for j := c.Start; j < c.End; j++ {
				local += int64(j)
			}
			atomic.AddInt64(&sum, local)
			return nil
		})
	}
}
