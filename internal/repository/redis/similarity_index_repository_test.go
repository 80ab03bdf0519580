package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRepo(t *testing.T, prefix string) (*SimilarityIndexRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSimilarityIndexRepository(client, prefix), mr
}

func TestSimilarityIndexRepository_SaveAndGet(t *testing.T) {
	repo, mr := newTestRepo(t, "")
	ctx := context.Background()

	scores := []domain.SimilarityScore{
		{ProductIDA: "p1", ProductIDB: "p2", Score: 0.91},
		{ProductIDA: "p1", ProductIDB: "p3", Score: 0.4},
	}
	if err := repo.SaveSimilar(ctx, "p1", scores, time.Hour); err != nil {
		t.Fatalf("SaveSimilar() error = %v", err)
	}

	if !mr.Exists("reco:similar:p1") {
		t.Fatal("key reco:similar:p1 not written")
	}
	if ttl := mr.TTL("reco:similar:p1"); ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", ttl)
	}

	got, err := repo.GetSimilar(ctx, "p1")
	if err != nil {
		t.Fatalf("GetSimilar() error = %v", err)
	}
	if len(got) != len(scores) {
		t.Fatalf("GetSimilar() = %+v, want %+v", got, scores)
	}
	for i := range scores {
		if got[i] != scores[i] {
			t.Errorf("GetSimilar()[%d] = %+v, want %+v", i, got[i], scores[i])
		}
	}
}

func TestSimilarityIndexRepository_GetSimilarErrors(t *testing.T) {
	repo, mr := newTestRepo(t, "shop")
	ctx := context.Background()

	if _, err := repo.GetSimilar(ctx, "missing"); !errors.Is(err, ErrSimilarNotFound) {
		t.Errorf("GetSimilar(missing) error = %v, want ErrSimilarNotFound", err)
	}

	if err := repo.SaveSimilar(ctx, "p1", []domain.SimilarityScore{}, time.Minute); err != nil {
		t.Fatalf("SaveSimilar() error = %v", err)
	}
	if !mr.Exists("shop:similar:p1") {
		t.Error("custom prefix not applied")
	}
	mr.FastForward(2 * time.Minute)
	if _, err := repo.GetSimilar(ctx, "p1"); !errors.Is(err, ErrSimilarNotFound) {
		t.Errorf("GetSimilar(expired) error = %v, want ErrSimilarNotFound", err)
	}

	if err := mr.Set("shop:similar:bad", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repo.GetSimilar(ctx, "bad"); err == nil || errors.Is(err, ErrSimilarNotFound) {
		t.Errorf("GetSimilar(bad json) error = %v, want decode error", err)
	}
}
