package recommend

import (
	"context"
	"fmt"
	"time"

	"marketplace/business/similarity"
	"marketplace/domain"
	"marketplace/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ---- Repository interfaces ----

// CatalogRepository is the storage collaborator. FetchActiveCatalog returns
// sellable products only; FetchProductsInCategory orders by rating descending.
type CatalogRepository interface {
	FetchActiveCatalog(ctx context.Context) ([]domain.Product, error)
	FetchProductsInCategory(ctx context.Context, categoryID, excludeID string, limit int) ([]domain.Product, error)
}

// IndexMirror receives similarity index entries after a rebuild so they can be
// read outside this process. GetSimilar serves entries another instance built.
type IndexMirror interface {
	SaveSimilar(ctx context.Context, productID string, scores []domain.SimilarityScore, ttl time.Duration) error
	GetSimilar(ctx context.Context, productID string) ([]domain.SimilarityScore, error)
}

// ---- Service ----

// Service owns the behavior log and the similarity index for the lifetime of
// the process. One instance is built at startup and shared by all handlers.
type Service struct {
	catalog CatalogRepository
	mirror  IndexMirror
	engine  *similarity.Engine
	log     *BehaviorLog
	index   *SimilarityIndex
	warmup  singleflight.Group
	cfg     Config
	now     func() time.Time
}

func NewService(catalog CatalogRepository, mirror IndexMirror, cfg Config) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		catalog: catalog,
		mirror:  mirror,
		engine:  similarity.NewEngine(cfg.Weights),
		log:     NewBehaviorLog(cfg.Behavior),
		index:   NewSimilarityIndex(),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *Service) Engine() *similarity.Engine {
	return s.engine
}

func (s *Service) BehaviorLog() *BehaviorLog {
	return s.log
}

//  Behavior logging

// RecordBehavior appends an event to the log. It never fails: events without a
// product or with an unknown action are dropped with a warning.
func (s *Service) RecordBehavior(event domain.BehaviorEvent) {
	if event.ProductID == "" {
		logger.Warn("recommend_behavior_dropped", "reason", "missing product_id")
		return
	}
	if !event.Action.Valid() {
		logger.Warn("recommend_behavior_dropped",
			"reason", "unknown action",
			"action", string(event.Action),
			"product_id", event.ProductID,
		)
		return
	}
	if event.UserID == "" {
		event.UserID = domain.AnonymousUserID
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	s.log.Append(event)
	BehaviorEventsTotal.WithLabelValues(string(event.Action)).Inc()

	logger.Debug("recommend_behavior",
		"user_id", event.UserID,
		"product_id", event.ProductID,
		"action", string(event.Action),
	)
}

//  Recommendation / serving

// GetRecommendations ranks pool against the cart and falls back to the
// category query when the scoring pass yields nothing. Cart products never
// appear in the result and ids are unique.
func (s *Service) GetRecommendations(
	ctx context.Context,
	cart []domain.CartLine,
	pool []domain.Product,
	limit int,
) []domain.Product {
	limit = s.limit(limit)
	if len(cart) == 0 {
		RecommendationsTotal.WithLabelValues(pathEmpty).Inc()
		return []domain.Product{}
	}

	if ranked := s.Rank(cart, pool, limit); len(ranked) > 0 {
		RecommendationsTotal.WithLabelValues(pathScored).Inc()
		return ranked
	}

	return s.fallback(ctx, cart, limit)
}

// Recommend is the full request flow: fetch the active catalog, rank it
// against the cart, then log a cart event for every line on behalf of userID.
// A catalog failure degrades to the category fallback instead of an error.
func (s *Service) Recommend(
	ctx context.Context,
	userID string,
	cart []domain.CartLine,
	limit int,
) []domain.Product {
	limit = s.limit(limit)
	if len(cart) == 0 {
		RecommendationsTotal.WithLabelValues(pathEmpty).Inc()
		return []domain.Product{}
	}

	tid := TraceIDFromContext(ctx)

	var recs []domain.Product
	pool, err := s.fetchCatalog(ctx)
	if err != nil {
		logger.Warn("recommend_catalog_unavailable",
			"trace_id", tid,
			"error", err.Error(),
		)
		recs = s.fallback(ctx, cart, limit)
	} else {
		s.warmIndex(pool)
		recs = s.GetRecommendations(ctx, cart, pool, limit)
	}

	logger.Debug("recommend_served",
		"trace_id", tid,
		"user_id", userID,
		"cart_lines", len(cart),
		"candidate_pool", len(pool),
		"limit", limit,
		"returned", len(recs),
	)

	// learn after serving so the current cart does not score itself
	for _, line := range cart {
		s.RecordBehavior(domain.BehaviorEvent{
			UserID:    userID,
			ProductID: line.Product.ID,
			Action:    domain.ActionCart,
		})
	}

	return recs
}

// warmIndex builds the index from pool once. Concurrent first requests share
// a single rebuild.
func (s *Service) warmIndex(pool []domain.Product) {
	if s.index.Ready() {
		return
	}
	_, _, _ = s.warmup.Do("index", func() (interface{}, error) {
		if !s.index.Ready() {
			s.RefreshSimilarityIndex(pool)
		}
		return nil, nil
	})
}

func (s *Service) fetchCatalog(ctx context.Context) ([]domain.Product, error) {
	if s.catalog == nil {
		return nil, errCatalogNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.catalog.FetchActiveCatalog(ctx)
}

func (s *Service) limit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	return limit
}

// ExplainCart scores the cart against the active catalog and returns the
// component breakdown. Unlike Recommend it reports catalog errors, does not
// fall back and records nothing.
func (s *Service) ExplainCart(ctx context.Context, cart []domain.CartLine, limit int) ([]domain.ScoredRecommendation, error) {
	if len(cart) == 0 {
		return []domain.ScoredRecommendation{}, nil
	}

	pool, err := s.fetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	return s.Explain(cart, pool, limit), nil
}
