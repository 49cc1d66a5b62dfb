package provider

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/selivandex/news-relay/pkg/models"
)

// ErrNotConfigured is returned when the provider API key is missing. Config
// validation refuses to start the service in that state, so hitting this at
// request time means the client was constructed by hand.
var ErrNotConfigured = errors.New("news provider API key is not configured")

// BuildQuery turns a filter payload into the provider query string. The
// result is deterministic for a given payload and environment.
func BuildQuery(apiKey string, payload models.QueryPayload) (string, error) {
	if apiKey == "" {
		return "", ErrNotConfigured
	}

	params := url.Values{}
	params.Set("apikey", apiKey)

	if payload.Country != "" {
		params.Set("country", payload.Country)
	}
	if payload.Category != "" {
		params.Set("category", strings.ToLower(payload.Category))
	}
	if payload.Page != 0 {
		params.Set("page", strconv.Itoa(payload.Page))
	}

	lang := payload.Language
	if lang == "" {
		lang = systemLanguage()
	}
	params.Set("language", lang)

	if len(payload.IncludeKeywords) > 0 || len(payload.ExcludeKeywords) > 0 {
		params.Set("q", keywordExpression(payload.IncludeKeywords, payload.ExcludeKeywords))
	}

	// Fixed result-shaping flags
	params.Set("image", "1")
	params.Set("removeduplicate", "1")
	params.Set("prioritydomain", "top")

	return params.Encode(), nil
}

// keywordExpression builds the boolean keyword query: an OR-expression over
// quoted include keywords and a NOT(AND...) expression over excludes.
func keywordExpression(include, exclude []string) string {
	parts := make([]string, 0, 2)

	if len(include) > 0 {
		quoted := make([]string, len(include))
		for i, k := range include {
			quoted[i] = fmt.Sprintf("%q", k)
		}
		parts = append(parts, fmt.Sprintf("( %s )", strings.Join(quoted, " OR ")))
	}

	if len(exclude) > 0 {
		parts = append(parts, fmt.Sprintf("NOT ( %s )", strings.Join(exclude, " AND ")))
	}

	return strings.Join(parts, " ")
}

// systemLanguage derives the primary language subtag from the process
// locale, falling back to English.
func systemLanguage() string {
	for _, env := range []string{"LC_ALL", "LANG"} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		// Strip encoding/modifier suffixes: en_US.UTF-8 -> en_US
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
		if err != nil {
			continue
		}
		base, _ := tag.Base()
		return base.String()
	}
	return "en"
}
