package similarity

import (
	"math"
	"testing"

	"marketplace/domain"
)

const eps = 1e-9

type fakeUsers map[string]map[string]struct{}

func (f fakeUsers) UsersOf(productID string) map[string]struct{} {
	return f[productID]
}

func users(ids ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func strPtr(s string) *string { return &s }

func product(id, category string, price float64, tags ...string) domain.Product {
	p := domain.Product{ID: id, Price: price, Tags: tags}
	if category != "" {
		p.CategoryID = strPtr(category)
	}
	return p
}

func TestContentSimilarity(t *testing.T) {
	e := NewEngine(DefaultWeights())

	tests := []struct {
		name string
		a, b domain.Product
		want float64
	}{
		{
			name: "identical product scores one",
			a:    product("a", "electronics", 250, "gaming", "rgb"),
			b:    product("a", "electronics", 250, "gaming", "rgb"),
			want: 1,
		},
		{
			name: "cart scenario p1 vs p2",
			a:    product("p1", "electronics", 1000, "gaming"),
			b:    product("p2", "electronics", 1100, "gaming", "rgb"),
			want: 0.4 + 0.3*(1-100.0/1100.0) + 0.3*0.5,
		},
		{
			name: "both prices zero count as identical",
			a:    product("a", "books", 0),
			b:    product("b", "books", 0),
			want: 0.4 + 0.3,
		},
		{
			name: "one zero price gives no price credit",
			a:    product("a", "books", 0),
			b:    product("b", "books", 10),
			want: 0.4,
		},
		{
			name: "missing categories never match",
			a:    product("a", "", 10, "x"),
			b:    product("b", "", 10, "x"),
			want: 0.3 + 0.3,
		},
		{
			name: "duplicate tags are treated as a set",
			a:    product("a", "c", 10, "x", "x", "y"),
			b:    product("b", "c", 10, "x"),
			want: 0.4 + 0.3 + 0.3*0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ContentSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > eps {
				t.Errorf("ContentSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestContentSimilarity_Bounds(t *testing.T) {
	e := NewEngine(Weights{})
	products := []domain.Product{
		product("a", "c1", 0),
		product("b", "c1", 1, "x"),
		product("c", "c2", 999999, "x", "y", "z"),
		product("d", "", 42, "y"),
		product("e", "c2", -5),
	}

	for _, a := range products {
		for _, b := range products {
			got := e.ContentSimilarity(a, b)
			if got < 0 || got > 1 {
				t.Errorf("ContentSimilarity(%s, %s) = %f, want within [0,1]", a.ID, b.ID, got)
			}
			if a.Category() != b.Category() && got > 0.6+eps {
				t.Errorf("ContentSimilarity(%s, %s) = %f, want <= 0.6 on category mismatch", a.ID, b.ID, got)
			}
		}
	}
}

func TestCollaborativeSimilarity(t *testing.T) {
	e := NewEngine(DefaultWeights())

	tests := []struct {
		name  string
		users UserSets
		a, b  string
		want  float64
	}{
		{name: "nil log", users: nil, a: "p1", b: "p2", want: 0},
		{name: "empty log", users: fakeUsers{}, a: "p1", b: "p2", want: 0},
		{
			name:  "one side without users",
			users: fakeUsers{"p1": users("u1")},
			a:     "p1", b: "p2",
			want: 0,
		},
		{
			name:  "same users",
			users: fakeUsers{"p2": users("u1", "u2"), "p4": users("u1", "u2")},
			a:     "p2", b: "p4",
			want: 1,
		},
		{
			name:  "partial overlap",
			users: fakeUsers{"p2": users("u1", "u2"), "p4": users("u1", "u3")},
			a:     "p2", b: "p4",
			want: 1.0 / 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.CollaborativeSimilarity(tt.users, tt.a, tt.b)
			if math.Abs(got-tt.want) > eps {
				t.Errorf("CollaborativeSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestHybridScore(t *testing.T) {
	e := NewEngine(DefaultWeights())

	candidate := domain.Product{ID: "p2", Rating: 4.0, ReviewCount: 30}
	popularity := (4.0/5)*0.7 + (30.0/100)*0.3
	want := 0.5*0.6 + 0.25*0.3 + popularity*0.1

	if got := e.HybridScore(0.5, 0.25, candidate); math.Abs(got-want) > eps {
		t.Errorf("HybridScore() = %f, want %f", got, want)
	}

	// popularity is deliberately unclamped
	viral := domain.Product{ID: "p3", Rating: 5, ReviewCount: 1000}
	if got := e.Popularity(viral); got <= 1 {
		t.Errorf("Popularity() = %f, want > 1 for 1000 reviews", got)
	}

	twinA := product("a", "c", 10, "x")
	twinB := product("b", "c", 10, "x")
	if e.HybridScore(0.8, 0, twinA) != e.HybridScore(0.8, 0, twinB) {
		t.Error("identical candidates must receive identical hybrid scores")
	}
}

func TestJaccard(t *testing.T) {
	if got := Jaccard(users(), users()); got != 0 {
		t.Errorf("Jaccard(empty, empty) = %f, want 0", got)
	}
	if got := Jaccard(users("a", "b", "c"), users("b", "c", "d")); math.Abs(got-0.5) > eps {
		t.Errorf("Jaccard() = %f, want 0.5", got)
	}
}

func TestNewEngine_AppliesDefaults(t *testing.T) {
	e := NewEngine(Weights{Content: 0.5})
	w := e.Weights()
	if w.Content != 0.5 {
		t.Errorf("Content weight = %f, want 0.5", w.Content)
	}
	if w.Category != defaultCategoryWeight || w.Popularity != defaultPopularityWeight {
		t.Errorf("zero weights not replaced by defaults: %+v", w)
	}
}
