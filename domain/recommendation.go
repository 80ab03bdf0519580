package domain

type SimilarityScore struct {
	ProductIDA string  `json:"product_id_a"`
	ProductIDB string  `json:"product_id_b"`
	Score      float64 `json:"score"`
}

// ScoredRecommendation exposes how a candidate earned its rank.
type ScoredRecommendation struct {
	Product         Product `json:"product"`
	SourceProductID string  `json:"source_product_id"` // cart product that produced the best score
	Content         float64 `json:"content"`           // 0–1
	Collaborative   float64 `json:"collaborative"`     // 0–1
	Popularity      float64 `json:"popularity"`        // unbounded above when reviews > 100
	Score           float64 `json:"score"`             // hybrid
}
