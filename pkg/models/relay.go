package models

// QueryPayload is the request-scoped filter for a news lookup. Unset fields
// take the defaults applied at the HTTP layer; the payload itself is never
// persisted.
type QueryPayload struct {
	IncludeKeywords []string `json:"includeKeywords"`
	ExcludeKeywords []string `json:"excludeKeywords"`
	Country         string   `json:"country"`
	Category        string   `json:"category"`
	Language        string   `json:"language"`
	Page            int      `json:"page"`
	IsHappy         bool     `json:"isHappy"`
}

// DefaultQueryPayload returns the baseline payload inbound requests are
// merged over.
func DefaultQueryPayload() QueryPayload {
	return QueryPayload{
		IncludeKeywords: []string{},
		ExcludeKeywords: []string{},
		Category:        "world",
		Language:        "en",
	}
}

// Response is the payload returned to API callers: either the live provider
// result or a cache-derived fallback. NextPage is the provider's pagination
// cursor, carried opaquely; empty means the provider sent none.
type Response struct {
	Status       string    `json:"status"`
	Results      []Article `json:"results"`
	NextPage     string    `json:"nextPage"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// Response status values.
const (
	StatusOK        = "ok"
	StatusNoResults = "no_results"
	StatusError     = "error"
)

// Partition is one calendar day of cached, sentiment-enriched articles.
// Results is semantically a set keyed by ArticleID in first-insertion order;
// NextPage is the provider cursor, last write wins.
type Partition struct {
	Date     string    `json:"date" db:"date"`
	Results  []Article `json:"results" db:"results"`
	NextPage string    `json:"next_page" db:"next_page"`
}
