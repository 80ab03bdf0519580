package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace/domain"

	"github.com/redis/go-redis/v9"
)

var ErrSimilarNotFound = errors.New("similar products not found")

// SimilarityIndexRepository mirrors the in-process similarity index so other
// instances and offline tools can read a product's neighbours.
type SimilarityIndexRepository struct {
	client *redis.Client
	prefix string
}

func NewSimilarityIndexRepository(client *redis.Client, prefix string) *SimilarityIndexRepository {
	if prefix == "" {
		prefix = "reco"
	}
	return &SimilarityIndexRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *SimilarityIndexRepository) key(productID string) string {
	// key format: "{prefix}:similar:{product_id}"
	return fmt.Sprintf("%s:similar:%s", r.prefix, productID)
}

func (r *SimilarityIndexRepository) SaveSimilar(
	ctx context.Context,
	productID string,
	scores []domain.SimilarityScore,
	ttl time.Duration,
) error {
	jsonData, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("failed to marshal similarity scores: %w", err)
	}

	if err := r.client.Set(ctx, r.key(productID), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store similarity scores in Redis: %w", err)
	}

	return nil
}

func (r *SimilarityIndexRepository) GetSimilar(ctx context.Context, productID string) ([]domain.SimilarityScore, error) {
	val, err := r.client.Get(ctx, r.key(productID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSimilarNotFound
		}
		return nil, fmt.Errorf("failed to get similarity scores from Redis: %w", err)
	}

	var scores []domain.SimilarityScore
	if err := json.Unmarshal([]byte(val), &scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal similarity scores: %w", err)
	}

	return scores, nil
}
