package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/selivandex/news-relay/internal/adapters/config"
	"github.com/selivandex/news-relay/pkg/models"
)

func payloadEN() models.QueryPayload {
	return models.QueryPayload{Language: "en"}
}

func testConfig(baseURL string) *config.NewsAPIConfig {
	return &config.NewsAPIConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		Timeout:        2 * time.Second,
		RequestsPerSec: 100,
	}
}

func TestClient_FetchLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("apikey = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"totalResults": 2,
			"results": [
				{"article_id": "a1", "title": "First", "description": "d1"},
				{"article_id": "a2", "title": "Second", "description": "d2"}
			],
			"nextPage": 17
		}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	resp, err := client.FetchLatest(context.Background(), payloadEN())
	if err != nil {
		t.Fatalf("FetchLatest failed: %v", err)
	}

	if resp.Status != "success" {
		t.Errorf("status = %q", resp.Status)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].ArticleID != "a1" {
		t.Errorf("first article id = %q", resp.Results[0].ArticleID)
	}
	if resp.NextPage != "17" {
		t.Errorf("nextPage = %q, want 17", resp.NextPage)
	}
}

// The cursor is an opaque token: numbers, arbitrary strings and null must all
// decode without failing the rest of the payload.
func TestClient_FetchLatest_CursorShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "numeric cursor",
			body: `{"status": "success", "results": [{"article_id": "a1"}], "nextPage": 42}`,
			want: "42",
		},
		{
			name: "numeric string cursor",
			body: `{"status": "success", "results": [{"article_id": "a1"}], "nextPage": "42"}`,
			want: "42",
		},
		{
			name: "opaque string cursor",
			body: `{"status": "success", "results": [{"article_id": "a1"}], "nextPage": "17hXb9Zq"}`,
			want: "17hXb9Zq",
		},
		{
			name: "null cursor",
			body: `{"status": "success", "results": [{"article_id": "a1"}], "nextPage": null}`,
			want: "",
		},
		{
			name: "absent cursor",
			body: `{"status": "success", "results": [{"article_id": "a1"}]}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(testConfig(srv.URL))

			resp, err := client.FetchLatest(context.Background(), payloadEN())
			if err != nil {
				t.Fatalf("FetchLatest failed: %v", err)
			}
			if len(resp.Results) != 1 {
				t.Fatalf("cursor shape must not drop results, got %d", len(resp.Results))
			}
			if resp.NextPage != tt.want {
				t.Errorf("nextPage = %q, want %q", resp.NextPage, tt.want)
			}
		})
	}
}

func TestClient_FetchLatest_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"status":"error","message":"rate limited"}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	if _, err := client.FetchLatest(context.Background(), payloadEN()); err == nil {
		t.Fatal("non-2xx status should be a provider failure")
	}
}

func TestClient_FetchLatest_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(testConfig(srv.URL))

	if _, err := client.FetchLatest(context.Background(), payloadEN()); err == nil {
		t.Fatal("transport failure should be a provider failure")
	}
}

func TestClient_FetchLatest_MissingKey(t *testing.T) {
	cfg := testConfig("http://localhost:0")
	cfg.APIKey = ""
	client := NewClient(cfg)

	if _, err := client.FetchLatest(context.Background(), payloadEN()); err == nil {
		t.Fatal("missing key should fail before the HTTP call")
	}
}
