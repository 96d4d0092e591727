// Package news fetches candidate articles for the roundup. The live path asks
// the text-generation collaborator to search for recent items; without a
// configured collaborator the fixed mock set is returned, clearly labeled as
// non-live so the operator is never misled about provenance.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"aiml-news-pipeline/config"
	"aiml-news-pipeline/llm"
	"aiml-news-pipeline/types"
)

// SearchUnavailableError reports that the live news search could not be
// reached or produced nothing usable.
type SearchUnavailableError struct {
	Err error
}

func (e *SearchUnavailableError) Error() string {
	return fmt.Sprintf("news search unavailable: %v", e.Err)
}

func (e *SearchUnavailableError) Unwrap() error { return e.Err }

// Fetcher finds candidate articles from the configured sources.
type Fetcher struct {
	cfg       *config.Config
	completer llm.Completer
	reddit    *redditSource
}

// New creates a Fetcher. A nil completer selects the mock article set.
func New(cfg *config.Config, completer llm.Completer) *Fetcher {
	f := &Fetcher{cfg: cfg, completer: completer}
	if len(cfg.News.Subreddits) > 0 {
		f.reddit = newRedditSource(cfg.News.Subreddits)
	}
	return f
}

// Search returns up to max articles for the query. The second return value
// reports whether the results are live data (false means the mock set).
func (f *Fetcher) Search(ctx context.Context, query string, max int) ([]types.Article, bool, error) {
	if max <= 0 {
		max = f.cfg.News.MaxArticles
	}

	if f.completer == nil {
		log.Println("[news] No text-generation collaborator configured — returning mock articles")
		return Mock(max), false, nil
	}

	log.Printf("[news] Searching for %q (max %d)...", query, max)

	text, err := f.completer.Complete(ctx, buildSearchPrompt(query, max), 4000)
	if err != nil {
		return nil, false, &SearchUnavailableError{Err: err}
	}

	articles := parseArticles(text)
	if len(articles) == 0 {
		return nil, false, &SearchUnavailableError{Err: fmt.Errorf("no articles in response")}
	}

	// Merge in Reddit candidates when configured. A Reddit failure is a
	// warning, not a search failure.
	if f.reddit != nil {
		extra, err := f.reddit.fetch(ctx, max)
		if err != nil {
			log.Printf("[news] Reddit source warning: %v", err)
		} else {
			articles = append(articles, extra...)
			log.Printf("[news] Reddit: found %d posts", len(extra))
		}
	}

	if len(articles) > max {
		articles = articles[:max]
	}
	log.Printf("[news] ✅ Found %d articles", len(articles))
	return articles, true, nil
}

func buildSearchPrompt(query string, max int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Find the %d most recent and important news articles about %s.\n\n", max, query))
	sb.WriteString("Focus on:\n")
	sb.WriteString("- Recent developments (last 7 days preferred)\n")
	sb.WriteString("- Major AI/ML announcements\n")
	sb.WriteString("- Research breakthroughs\n")
	sb.WriteString("- Industry news\n")
	sb.WriteString("- Product launches\n\n")
	sb.WriteString("For each article, provide:\n")
	sb.WriteString("1. Title\n2. Source/Publication\n3. Date\n4. Brief summary (2-3 sentences)\n5. URL\n\n")
	sb.WriteString("Format your response as a JSON array of objects with keys: title, source, date, snippet, url")
	return sb.String()
}

var jsonArrayRe = regexp.MustCompile(`\[[\s\S]*\]`)

// parseArticles extracts articles from the collaborator's reply. It first
// looks for a JSON array, then falls back to "Key: value" structured text.
func parseArticles(text string) []types.Article {
	if m := jsonArrayRe.FindString(text); m != "" {
		var raw []struct {
			Title   string `json:"title"`
			Source  string `json:"source"`
			Date    string `json:"date"`
			Snippet string `json:"snippet"`
			URL     string `json:"url"`
		}
		if err := json.Unmarshal([]byte(m), &raw); err == nil {
			articles := make([]types.Article, 0, len(raw))
			for _, r := range raw {
				if r.Title == "" {
					continue
				}
				articles = append(articles, types.Article{
					Title:         r.Title,
					Summary:       r.Snippet,
					Source:        r.Source,
					URL:           r.URL,
					PublishedDate: r.Date,
				})
			}
			if len(articles) > 0 {
				return articles
			}
		}
	}
	return parseStructuredText(text)
}

func parseStructuredText(text string) []types.Article {
	var articles []types.Article
	var cur types.Article

	flush := func() {
		if cur.Title != "" {
			articles = append(articles, cur)
		}
		cur = types.Article{}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "title":
			cur.Title = value
		case "source":
			cur.Source = value
		case "date":
			cur.PublishedDate = value
		case "summary", "snippet":
			cur.Summary = value
		case "url":
			cur.URL = value
		}
	}
	flush()
	return articles
}
