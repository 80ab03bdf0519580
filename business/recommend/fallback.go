package recommend

import (
	"context"

	"marketplace/domain"
	"marketplace/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const fallbackConcurrency = 4

// fallback degrades to "more of the same category": up to FallbackPerItem top
// rated products per cart line category, merged in cart order. A failed query
// only removes that line's contribution.
func (s *Service) fallback(ctx context.Context, cart []domain.CartLine, limit int) []domain.Product {
	if s.catalog == nil || len(cart) == 0 {
		RecommendationsTotal.WithLabelValues(pathEmpty).Inc()
		return []domain.Product{}
	}

	tid := TraceIDFromContext(ctx)
	perLine := make([][]domain.Product, len(cart))

	var g errgroup.Group
	g.SetLimit(fallbackConcurrency)

	for i, line := range cart {
		if !line.Product.HasCategory() {
			continue
		}
		g.Go(func() error {
			rows, err := s.catalog.FetchProductsInCategory(
				ctx,
				line.Product.Category(),
				line.Product.ID,
				s.cfg.FallbackPerItem,
			)
			if err != nil {
				logger.Warn("recommend_fallback_query_failed",
					"trace_id", tid,
					"category_id", line.Product.Category(),
					"error", err.Error(),
				)
				return nil
			}
			perLine[i] = rows
			return nil
		})
	}
	_ = g.Wait()

	cartIDs := cartProductIDs(cart)
	seen := make(map[string]struct{}, limit)
	out := make([]domain.Product, 0, limit)

	for _, rows := range perLine {
		for _, p := range rows {
			if len(out) >= limit {
				break
			}
			if _, inCart := cartIDs[p.ID]; inCart {
				continue
			}
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}

	path := pathFallback
	if len(out) == 0 {
		path = pathEmpty
	}
	RecommendationsTotal.WithLabelValues(path).Inc()

	logger.Debug("recommend_fallback",
		"trace_id", tid,
		"cart_lines", len(cart),
		"returned", len(out),
	)

	return out
}
