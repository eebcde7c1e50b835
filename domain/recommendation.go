package domain

// Algorithm tags carried on recommendation items.
const (
	AlgorithmCollaborative = "collaborative"
	AlgorithmContent       = "content"
	AlgorithmPopularity    = "popularity"
	AlgorithmRating        = "rating"
)

// RecommendationItem is an output-only view of a product plus the signal
// that put it in the list. Never persisted.
type RecommendationItem struct {
	Product       Product `json:"product"`
	Algorithm     string  `json:"algorithm"`
	Explanation   string  `json:"explanation"`
	Score         float64 `json:"score,omitempty"`
	CombinedScore float64 `json:"combined_score,omitempty"`
}

// SimilarityScore pairs a candidate user with their Jaccard similarity
// to the target user. Transient, per-request.
type SimilarityScore struct {
	UserID     uint    `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

// UserProfile is a derived preference summary built fresh per request from
// one user's interactions and discarded after use.
type UserProfile struct {
	CategoryScores map[string]float64 `json:"category_scores"`
	AvgPrice       float64            `json:"avg_price"`
	AvgRating      float64            `json:"avg_rating"`
	PreferredTypes map[string]int     `json:"preferred_types"`
}

// ProductScore is one row of the popularity aggregation
// (group interactions by product, sum weighted scores).
type ProductScore struct {
	ProductID  uint64  `json:"product_id"`
	TotalScore float64 `json:"total_score"`
	Count      int     `json:"count"`
}

// DebugRecommendation exposes the per-algorithm lists next to the blended
// output, for the debug endpoint only.
type DebugRecommendation struct {
	Collaborative []RecommendationItem `json:"collaborative"`
	Content       []RecommendationItem `json:"content"`
	Popularity    []RecommendationItem `json:"popularity"`
	Blended       []RecommendationItem `json:"blended"`
	Profile       *UserProfile         `json:"profile,omitempty"`
	SimilarUsers  []SimilarityScore    `json:"similar_users,omitempty"`
}
