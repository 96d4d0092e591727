package news

import (
	"context"
	"fmt"
	"strings"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"aiml-news-pipeline/types"
)

// redditSource pulls top posts from configured subreddits as extra article
// candidates.
type redditSource struct {
	subreddits []string
}

func newRedditSource(subreddits []string) *redditSource {
	return &redditSource{subreddits: subreddits}
}

func (r *redditSource) fetch(ctx context.Context, max int) ([]types.Article, error) {
	client, err := reddit.NewReadonlyClient()
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}

	perSub := max / len(r.subreddits)
	if perSub < 1 {
		perSub = 1
	}

	var articles []types.Article
	for _, sub := range r.subreddits {
		posts, _, err := client.Subreddit.TopPosts(ctx, sub, &reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: perSub},
			Time:        "week",
		})
		if err != nil {
			return nil, fmt.Errorf("top posts r/%s: %w", sub, err)
		}
		for _, post := range posts {
			articles = append(articles, postToArticle(post, sub))
		}
	}
	return articles, nil
}

func postToArticle(post *reddit.Post, sub string) types.Article {
	summary := strings.TrimSpace(post.Body)
	if summary == "" {
		summary = post.Title
	}
	if len(summary) > 400 {
		summary = summary[:400] + "..."
	}

	a := types.Article{
		Title:   post.Title,
		Summary: summary,
		Source:  "r/" + sub,
		URL:     post.URL,
	}
	if post.Created != nil {
		a.PublishedDate = post.Created.Format("2006-01-02")
	}
	if a.URL == "" {
		a.URL = "https://www.reddit.com" + post.Permalink
	}
	return a
}
