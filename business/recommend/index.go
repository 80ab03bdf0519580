package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"marketplace/domain"
	"marketplace/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// SimilarityIndex caches each product's nearest neighbours. A rebuild builds a
// new map and swaps it in; readers never see a half-written entry.
type SimilarityIndex struct {
	mu          sync.RWMutex
	entries     map[string][]domain.SimilarityScore
	refreshedAt time.Time
	generation  uint64
}

func NewSimilarityIndex() *SimilarityIndex {
	return &SimilarityIndex{entries: make(map[string][]domain.SimilarityScore)}
}

// Get returns a copy of the neighbours stored for productID.
func (x *SimilarityIndex) Get(productID string) ([]domain.SimilarityScore, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	scores, ok := x.entries[productID]
	if !ok {
		return nil, false
	}
	out := make([]domain.SimilarityScore, len(scores))
	copy(out, scores)
	return out, true
}

func (x *SimilarityIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Ready reports whether at least one rebuild has completed.
func (x *SimilarityIndex) Ready() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return !x.refreshedAt.IsZero()
}

// Generation counts completed rebuilds.
func (x *SimilarityIndex) Generation() uint64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.generation
}

func (x *SimilarityIndex) RefreshedAt() time.Time {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.refreshedAt
}

// replace overwrites the entries of every product in fresh and keeps the rest.
func (x *SimilarityIndex) replace(fresh map[string][]domain.SimilarityScore, at time.Time) int {
	x.mu.Lock()
	defer x.mu.Unlock()

	next := make(map[string][]domain.SimilarityScore, len(x.entries)+len(fresh))
	for id, scores := range x.entries {
		next[id] = scores
	}
	for id, scores := range fresh {
		next[id] = scores
	}
	x.entries = next
	x.refreshedAt = at
	x.generation++
	return len(next)
}

// RefreshSimilarityIndex computes, for every catalog product, its IndexTopK
// most similar other products by the mean of content and collaborative
// similarity, and stores them. Products missing from catalog keep their old entries.
func (s *Service) RefreshSimilarityIndex(catalog []domain.Product) {
	s.refreshIndex(catalog)
}

// RefreshFromCatalog fetches the active catalog, rebuilds the index and pushes
// the new entries to the mirror when one is configured.
func (s *Service) RefreshFromCatalog(ctx context.Context) error {
	catalog, err := s.fetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	fresh := s.refreshIndex(catalog)
	// mirror failures are logged inside; the local index is already current
	_, _ = s.mirrorIndex(ctx, fresh)
	return nil
}

// SimilarProducts reads neighbours from the precomputed index, then from the
// mirror when this process has no entry yet. limit <= 0 returns every stored
// neighbour.
func (s *Service) SimilarProducts(ctx context.Context, productID string, limit int) []domain.SimilarityScore {
	scores, ok := s.index.Get(productID)
	if !ok {
		scores = s.mirroredSimilar(ctx, productID)
	}
	if limit > 0 && len(scores) > limit {
		scores = scores[:limit]
	}
	return scores
}

func (s *Service) mirroredSimilar(ctx context.Context, productID string) []domain.SimilarityScore {
	if s.mirror == nil {
		return []domain.SimilarityScore{}
	}
	scores, err := s.mirror.GetSimilar(ctx, productID)
	if err != nil {
		logger.Debug("recommend_similar_mirror_miss",
			"trace_id", TraceIDFromContext(ctx),
			"product_id", productID,
			"error", err.Error(),
		)
		return []domain.SimilarityScore{}
	}
	if scores == nil {
		return []domain.SimilarityScore{}
	}
	return scores
}

func (s *Service) Index() *SimilarityIndex {
	return s.index
}

func (s *Service) refreshIndex(catalog []domain.Product) map[string][]domain.SimilarityScore {
	start := time.Now()
	users := s.log.Snapshot()
	topK := s.cfg.IndexTopK

	rows := make([][]domain.SimilarityScore, len(catalog))

	var g errgroup.Group
	g.SetLimit(s.cfg.IndexWorkers)
	for i := range catalog {
		g.Go(func() error {
			row := make([]domain.SimilarityScore, 0, len(catalog))
			for j := range catalog {
				if i == j {
					continue
				}
				content := s.engine.ContentSimilarity(catalog[i], catalog[j])
				collaborative := s.engine.CollaborativeSimilarity(users, catalog[i].ID, catalog[j].ID)
				row = append(row, domain.SimilarityScore{
					ProductIDA: catalog[i].ID,
					ProductIDB: catalog[j].ID,
					Score:      (content + collaborative) / 2,
				})
			}
			sort.SliceStable(row, func(a, b int) bool {
				return row[a].Score > row[b].Score
			})
			if len(row) > topK {
				row = row[:topK:topK]
			}
			rows[i] = row
			return nil
		})
	}
	_ = g.Wait()

	// a product listed twice keeps its last row
	fresh := make(map[string][]domain.SimilarityScore, len(catalog))
	for i, p := range catalog {
		fresh[p.ID] = rows[i]
	}

	size := s.index.replace(fresh, s.now())
	SimilarityIndexEntries.Set(float64(size))
	SimilarityIndexRefreshSeconds.Observe(time.Since(start).Seconds())

	logger.Info("recommend_index_refreshed",
		"catalog_size", len(catalog),
		"index_size", size,
		"took_ms", time.Since(start).Milliseconds(),
	)

	return fresh
}

// mirrorIndex pushes fresh entries to the mirror. It reports how many writes
// failed and the first error seen.
func (s *Service) mirrorIndex(ctx context.Context, fresh map[string][]domain.SimilarityScore) (int, error) {
	if s.mirror == nil {
		return 0, nil
	}
	failed := 0
	var firstErr error
	for productID, scores := range fresh {
		if err := ctx.Err(); err != nil {
			logger.Warn("recommend_index_mirror_aborted", "error", err.Error())
			return failed, err
		}
		if err := s.mirror.SaveSimilar(ctx, productID, scores, s.cfg.MirrorTTL); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("mirror %s: %w", productID, err)
			}
			failed++
		}
	}
	if failed > 0 {
		logger.Warn("recommend_index_mirror_partial",
			"failed", failed,
			"total", len(fresh),
			"first_error", firstErr.Error(),
		)
	}
	return failed, firstErr
}

// RunIndexRefresher rebuilds the index from the catalog every interval until
// ctx is cancelled. interval <= 0 disables it.
func (s *Service) RunIndexRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RefreshFromCatalog(ctx); err != nil {
				logger.Error("recommend_index_refresh_failed", "error", err.Error())
			}
		}
	}
}
