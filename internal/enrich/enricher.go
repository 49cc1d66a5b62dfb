package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/selivandex/news-relay/internal/adapters/config"
	"github.com/selivandex/news-relay/pkg/logger"
	"github.com/selivandex/news-relay/pkg/models"
)

// Enricher returns a sentiment label per article id. The mapping may be
// partial; ids absent from it default to Neutral at merge time.
type Enricher interface {
	Sentiments(ctx context.Context, articles []models.Article) (map[string]models.Sentiment, error)
}

const systemPrompt = `You are an AI trained to analyze news articles and determine their sentiment. You will be given news articles separated by #__#. Each article has the fields article_id, title and description.
Classify the sentiment of each article based on its title and description into one of:
  Positive: the article conveys uplifting, optimistic, or good news.
  Negative: the article conveys sad, worrisome, or pessimistic news.
  Neutral: the article does not lean toward positive or negative sentiment.
Respond with a JSON array only, no prose, with this structure:
[{"article_id": "...", "sentiment": "Positive"}, {"article_id": "...", "sentiment": "Negative"}]`

// OpenAIEnricher labels article batches via a chat completion call
type OpenAIEnricher struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIEnricher creates new sentiment enricher
func NewOpenAIEnricher(cfg *config.SentimentConfig) *OpenAIEnricher {
	return &OpenAIEnricher{
		client:  openai.NewClient(cfg.APIKey),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Sentiments labels a batch of articles in a single API call
func (e *OpenAIEnricher) Sentiments(ctx context.Context, articles []models.Article) (map[string]models.Sentiment, error) {
	if len(articles) == 0 {
		return map[string]models.Sentiment{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BatchPrompt(articles)},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("sentiment completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	labels, err := ParseSentiments(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sentiment response: %w", err)
	}

	logger.Debug("sentiment batch labeled",
		zap.Int("articles", len(articles)),
		zap.Int("labels", len(labels)),
		zap.Duration("latency", time.Since(start)),
	)

	return labels, nil
}

// BatchPrompt renders the user prompt for a batch of articles
func BatchPrompt(articles []models.Article) string {
	var b strings.Builder
	for _, a := range articles {
		fmt.Fprintf(&b, "%s: %s. %s#__#", a.ArticleID, a.Title, a.Description)
	}
	return b.String()
}

// ParseSentiments extracts the id-to-label mapping from model output.
// Tolerates code fences and surrounding prose; unknown labels are dropped
// so they fall back to Neutral downstream.
func ParseSentiments(content string) (map[string]models.Sentiment, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in model output")
	}

	var rows []struct {
		ArticleID string `json:"article_id"`
		Sentiment string `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &rows); err != nil {
		return nil, fmt.Errorf("malformed sentiment JSON: %w", err)
	}

	labels := make(map[string]models.Sentiment, len(rows))
	for _, row := range rows {
		s := models.Sentiment(row.Sentiment)
		if row.ArticleID == "" || !s.Valid() {
			continue
		}
		labels[row.ArticleID] = s
	}

	return labels, nil
}
