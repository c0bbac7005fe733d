package ranking

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/okian/tandem/internal/domain/types"
)

func populate(b *testing.B, store *TreapStore, n int) []types.Pair {
	b.Helper()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	pairs := make([]types.Pair, 0, n)
	for i := 0; i < n; i++ {
		p, ok := types.NewPair(fmt.Sprintf("e%d", i), fmt.Sprintf("e%d", n+i))
		if !ok {
			b.Fatalf("invalid pair at %d", i)
		}
		if err := store.Accumulate(ctx, p, fmt.Sprintf("P%d", i%50), rng.Int63n(365)+1); err != nil {
			b.Fatalf("populate: %v", err)
		}
		pairs = append(pairs, p)
	}
	return pairs
}

func BenchmarkTreapStore_Accumulate(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore(WithSeed(7))
	pairs := populate(b, store, 50_000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p := pairs[i%len(pairs)]
		if err := store.Accumulate(ctx, p, "bench", int64(i%90)+1); err != nil {
			b.Fatalf("accumulate: %v", err)
		}
	}
}

func BenchmarkTreapStore_Best(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore(WithSeed(7))
	populate(b, store, 50_000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := store.Best(ctx); err != nil {
			b.Fatalf("best: %v", err)
		}
	}
}

func BenchmarkTreapStore_TopN(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore(WithSeed(7))
	populate(b, store, 50_000)

	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := store.TopN(ctx, n); err != nil {
					b.Fatalf("topn: %v", err)
				}
			}
		})
	}
}

func BenchmarkTreapStore_Rank(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore(WithSeed(7))
	pairs := populate(b, store, 10_000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := store.Rank(ctx, pairs[i%len(pairs)]); err != nil {
			b.Fatalf("rank: %v", err)
		}
	}
}

func BenchmarkTreapStore_MixedParallel(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore(WithSeed(7))
	pairs := populate(b, store, 50_000)

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			p := pairs[i%len(pairs)]
			switch i % 10 {
			case 0, 1, 2, 3, 4, 5:
				_ = store.Accumulate(ctx, p, "bench", int64(i%30)+1)
			case 6, 7:
				_, _ = store.Rank(ctx, p)
			case 8:
				_, _ = store.TopN(ctx, 100)
			default:
				_, _ = store.Best(ctx)
			}
			i++
		}
	})
}
