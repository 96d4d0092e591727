// Package publish uploads the finished roundup video to YouTube. Entirely
// optional: the pipeline is complete once the artifact is rendered, and this
// stage only runs on an explicit operator request.
package publish

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"aiml-news-pipeline/config"
	"aiml-news-pipeline/types"
)

// Metadata is the upload listing for one video.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Visibility  string   `json:"visibility"`
}

// Uploader publishes rendered videos via the YouTube Data API.
type Uploader struct {
	cfg *config.Config
}

// New creates an Uploader.
func New(cfg *config.Config) *Uploader {
	return &Uploader{cfg: cfg}
}

// BuildMetadata derives upload metadata from the script and its articles.
// An empty title gets a dated default from the channel name.
func BuildMetadata(script *types.Script, articles []types.Article, title, visibility string) Metadata {
	if title == "" {
		title = fmt.Sprintf("%s — AI News Roundup (%s)", script.ChannelName, time.Now().Format("Jan 2, 2006"))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("This week's AI and machine learning news roundup from %s.\n\nStories covered:\n", script.ChannelName))
	for _, a := range articles {
		line := "• " + a.Title
		if a.Source != "" {
			line += " — " + a.Source
		}
		sb.WriteString(line + "\n")
		if a.URL != "" {
			sb.WriteString("  " + a.URL + "\n")
		}
	}
	sb.WriteString(fmt.Sprintf("\nSubscribe to %s for more AI and machine learning content.", script.ChannelName))

	tags := []string{"AI", "machine learning", "artificial intelligence", "AI news", "tech news", script.ChannelName}

	return Metadata{
		Title:       title,
		Description: sb.String(),
		Tags:        tags,
		Visibility:  visibility,
	}
}

// Run uploads the video file with the given metadata and returns the video ID
// and watch URL.
func (u *Uploader) Run(ctx context.Context, videoFile string, meta Metadata) (string, string, error) {
	log.Println("[publish] Authenticating with YouTube API...")

	client, err := u.getOAuthClient(ctx)
	if err != nil {
		return "", "", fmt.Errorf("youtube auth: %w", err)
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", "", fmt.Errorf("youtube service: %w", err)
	}

	log.Printf("[publish] Uploading: %q", meta.Title)

	visibility := meta.Visibility
	if visibility == "" {
		visibility = u.cfg.Publish.Visibility
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                meta.Title,
			Description:          meta.Description,
			Tags:                 meta.Tags,
			CategoryId:           u.cfg.Publish.CategoryID,
			DefaultLanguage:      u.cfg.Publish.DefaultLanguage,
			DefaultAudioLanguage: u.cfg.Publish.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           visibility,
			SelfDeclaredMadeForKids: u.cfg.Publish.MadeForKids,
		},
	}

	f, err := os.Open(videoFile)
	if err != nil {
		return "", "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.NotifySubscribers(u.cfg.Publish.NotifySubscribers)
	call.Media(f)

	uploaded, err := call.Do()
	if err != nil {
		return "", "", fmt.Errorf("youtube upload: %w", err)
	}

	videoURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id)
	log.Printf("[publish] ✅ Uploaded: %s", videoURL)
	return uploaded.Id, videoURL, nil
}

// getOAuthClient builds an OAuth2 HTTP client from env credentials using the
// refresh-token flow.
func (u *Uploader) getOAuthClient(ctx context.Context) (*http.Client, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, or YOUTUBE_REFRESH_TOKEN not set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}

	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}

	return conf.Client(ctx, token), nil
}
