// Package similarity scores pairs of products from their attributes and
// from the users who interacted with them. Every function is total: missing
// categories, empty tag sets and zero prices map to neutral values.
package similarity

import (
	"math"

	"marketplace/domain"
)

const (
	defaultCategoryWeight = 0.4
	defaultPriceWeight    = 0.3
	defaultTagWeight      = 0.3

	defaultContentWeight       = 0.6
	defaultCollaborativeWeight = 0.3
	defaultPopularityWeight    = 0.1

	defaultRatingShare = 0.7
	defaultReviewShare = 0.3

	maxRating   = 5.0
	reviewScale = 100.0
)

type Weights struct {
	// content similarity terms
	Category float64
	Price    float64
	Tag      float64

	// hybrid blend
	Content       float64
	Collaborative float64
	Popularity    float64

	// popularity prior
	RatingShare float64
	ReviewShare float64
}

func DefaultWeights() Weights {
	return Weights{
		Category:      defaultCategoryWeight,
		Price:         defaultPriceWeight,
		Tag:           defaultTagWeight,
		Content:       defaultContentWeight,
		Collaborative: defaultCollaborativeWeight,
		Popularity:    defaultPopularityWeight,
		RatingShare:   defaultRatingShare,
		ReviewShare:   defaultReviewShare,
	}
}

// withDefaults replaces zero weights by their default value.
func (w Weights) withDefaults() Weights {
	d := DefaultWeights()
	if w.Category == 0 {
		w.Category = d.Category
	}
	if w.Price == 0 {
		w.Price = d.Price
	}
	if w.Tag == 0 {
		w.Tag = d.Tag
	}
	if w.Content == 0 {
		w.Content = d.Content
	}
	if w.Collaborative == 0 {
		w.Collaborative = d.Collaborative
	}
	if w.Popularity == 0 {
		w.Popularity = d.Popularity
	}
	if w.RatingShare == 0 {
		w.RatingShare = d.RatingShare
	}
	if w.ReviewShare == 0 {
		w.ReviewShare = d.ReviewShare
	}
	return w
}

// UserSets resolves the distinct users that interacted with a product.
type UserSets interface {
	UsersOf(productID string) map[string]struct{}
}

// Engine computes content, collaborative and hybrid scores with a fixed set of weights.
type Engine struct {
	w Weights
}

func NewEngine(w Weights) *Engine {
	return &Engine{w: w.withDefaults()}
}

func (e *Engine) Weights() Weights {
	return e.w
}

// ContentSimilarity blends category equality, price proximity and tag overlap:
//
//	sim(a, b) = (w_cat*[cat_a == cat_b] + w_price*(1 - |p_a-p_b|/max(p_a,p_b)) + w_tag*jaccard(tags_a, tags_b))
//	            / (w_cat + w_price + w_tag)
//
// The denominator always holds all three weights, even when a category is missing.
func (e *Engine) ContentSimilarity(a, b domain.Product) float64 {
	var score, factors float64

	if a.HasCategory() && b.HasCategory() && a.Category() == b.Category() {
		score += e.w.Category
	}
	factors += e.w.Category

	score += priceProximity(a.Price, b.Price) * e.w.Price
	factors += e.w.Price

	score += Jaccard(tagSet(a.Tags), tagSet(b.Tags)) * e.w.Tag
	factors += e.w.Tag

	if factors == 0 {
		return 0
	}
	return clamp01(score / factors)
}

// CollaborativeSimilarity is the Jaccard index of the users who touched each product.
func (e *Engine) CollaborativeSimilarity(users UserSets, productIDA, productIDB string) float64 {
	if users == nil {
		return 0
	}
	usersA := users.UsersOf(productIDA)
	usersB := users.UsersOf(productIDB)
	if len(usersA) == 0 || len(usersB) == 0 {
		return 0
	}
	return Jaccard(usersA, usersB)
}

// Popularity is not clamped: review counts above 100 push it past 1.
func (e *Engine) Popularity(p domain.Product) float64 {
	rating := nonNegative(p.Rating)
	reviews := nonNegative(float64(p.ReviewCount))
	return (rating/maxRating)*e.w.RatingShare + (reviews/reviewScale)*e.w.ReviewShare
}

func (e *Engine) HybridScore(contentSim, collaborativeSim float64, candidate domain.Product) float64 {
	return contentSim*e.w.Content +
		collaborativeSim*e.w.Collaborative +
		e.Popularity(candidate)*e.w.Popularity
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty.
func Jaccard[T comparable](a, b map[T]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for k := range small {
		if _, ok := large[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// priceProximity is 1 for equal prices (including both zero) and falls
// linearly with the relative difference.
func priceProximity(a, b float64) float64 {
	a, b = nonNegative(a), nonNegative(b)
	maxPrice := math.Max(a, b)
	if maxPrice == 0 {
		return 1
	}
	return 1 - math.Abs(a-b)/maxPrice
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
