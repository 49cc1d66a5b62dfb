package models

// Sentiment is the label attached to an article by the enrichment step.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// Valid reports whether s is one of the known labels.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// Article represents a single article as returned by the upstream provider,
// plus the sentiment label attached at merge time. Articles are immutable
// once merged except for the sentiment field.
type Article struct {
	ArticleID      string    `json:"article_id"`
	Title          string    `json:"title"`
	Link           string    `json:"link"`
	Keywords       []string  `json:"keywords,omitempty"`
	Creator        []string  `json:"creator,omitempty"`
	Description    string    `json:"description"`
	Content        string    `json:"content"`
	PubDate        string    `json:"pubDate"`
	PubDateTZ      string    `json:"pubDateTZ,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	SourceID       string    `json:"source_id"`
	SourcePriority int       `json:"source_priority,omitempty"`
	SourceName     string    `json:"source_name"`
	SourceURL      string    `json:"source_url,omitempty"`
	SourceIcon     string    `json:"source_icon,omitempty"`
	Language       string    `json:"language,omitempty"`
	Country        []string  `json:"country,omitempty"`
	Category       []string  `json:"category,omitempty"`
	Duplicate      bool      `json:"duplicate,omitempty"`
	Sentiment      Sentiment `json:"sentiment,omitempty"`
}
