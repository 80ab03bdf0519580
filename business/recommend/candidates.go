package recommend

import (
	"errors"
	"sort"

	"marketplace/business/similarity"
	"marketplace/domain"
)

var errCatalogNotConfigured = errors.New("catalog repository not configured")

// Rank runs the scoring pass only and returns at most limit products. It does
// not fall back; an empty result means no candidate shares a category with the cart.
func (s *Service) Rank(cart []domain.CartLine, pool []domain.Product, limit int) []domain.Product {
	scored := s.Explain(cart, pool, limit)
	out := make([]domain.Product, 0, len(scored))
	for _, rec := range scored {
		out = append(out, rec.Product)
	}
	return out
}

// Explain returns the ranked candidates with the components of their best score.
func (s *Service) Explain(cart []domain.CartLine, pool []domain.Product, limit int) []domain.ScoredRecommendation {
	limit = s.limit(limit)
	scored := scoreCandidates(s.engine, s.log.Snapshot(), cart, pool)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// filterCandidates keeps pool products whose category appears in the cart and
// that are not themselves in the cart.
func filterCandidates(cart []domain.CartLine, pool []domain.Product) []domain.Product {
	cartIDs := cartProductIDs(cart)
	categories := make(map[string]struct{}, len(cart))
	for _, line := range cart {
		if line.Product.HasCategory() {
			categories[line.Product.Category()] = struct{}{}
		}
	}

	out := make([]domain.Product, 0, len(pool))
	for _, p := range pool {
		if !p.HasCategory() {
			continue
		}
		if _, ok := categories[p.Category()]; !ok {
			continue
		}
		if _, inCart := cartIDs[p.ID]; inCart {
			continue
		}
		out = append(out, p)
	}
	return out
}

// scoreCandidates scores every (cart line, candidate) pair of the same
// category, keeps the best score per candidate and sorts descending. Ties keep
// the order in which candidates were first scored.
func scoreCandidates(
	engine *similarity.Engine,
	users similarity.UserSets,
	cart []domain.CartLine,
	pool []domain.Product,
) []domain.ScoredRecommendation {
	candidates := filterCandidates(cart, pool)
	if len(candidates) == 0 {
		return []domain.ScoredRecommendation{}
	}

	scored := make([]domain.ScoredRecommendation, 0, len(candidates))
	position := make(map[string]int, len(candidates))

	for _, line := range cart {
		source := line.Product
		if !source.HasCategory() {
			continue
		}

		for _, candidate := range candidates {
			if candidate.Category() != source.Category() {
				continue
			}

			content := engine.ContentSimilarity(source, candidate)
			collaborative := engine.CollaborativeSimilarity(users, source.ID, candidate.ID)
			hybrid := engine.HybridScore(content, collaborative, candidate)

			rec := domain.ScoredRecommendation{
				Product:         candidate,
				SourceProductID: source.ID,
				Content:         content,
				Collaborative:   collaborative,
				Popularity:      engine.Popularity(candidate),
				Score:           hybrid,
			}

			// max aggregation: a strong match against one line is not diluted by others
			if i, seen := position[candidate.ID]; seen {
				if hybrid > scored[i].Score {
					scored[i] = rec
				}
				continue
			}
			position[candidate.ID] = len(scored)
			scored = append(scored, rec)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

func cartProductIDs(cart []domain.CartLine) map[string]struct{} {
	ids := make(map[string]struct{}, len(cart))
	for _, line := range cart {
		ids[line.Product.ID] = struct{}{}
	}
	return ids
}
