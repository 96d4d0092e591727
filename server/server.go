// Package server exposes the pipeline to operators over HTTP. One working
// session lives in memory at a time; each stage validates what the previous
// stage produced and invalidates everything downstream of its own output.
package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"aiml-news-pipeline/captions"
	"aiml-news-pipeline/config"
	"aiml-news-pipeline/llm"
	"aiml-news-pipeline/narration"
	"aiml-news-pipeline/news"
	"aiml-news-pipeline/publish"
	"aiml-news-pipeline/render"
	"aiml-news-pipeline/script"
	"aiml-news-pipeline/session"
	"aiml-news-pipeline/tts"
	"aiml-news-pipeline/types"
)

// workState is the single in-flight session. Every field below Articles is
// derived from the fields above it; mutating a stage clears its descendants.
type workState struct {
	RunID    string                `json:"run_id"`
	RunDir   string                `json:"-"`
	Articles []types.Article       `json:"articles"`
	Live     bool                  `json:"live"`
	Selected []int                 `json:"selected"`
	Script   *types.Script         `json:"script,omitempty"`
	Track    *types.NarrationTrack `json:"track,omitempty"`
	Artifact *types.VideoArtifact  `json:"artifact,omitempty"`
	VideoURL string                `json:"video_url,omitempty"`
}

// Server routes operator requests to the pipeline stages.
type Server struct {
	cfg        *config.Config
	fetcher    *news.Fetcher
	structurer *script.Structurer
	store      *session.Store
	uploader   *publish.Uploader

	mu    sync.Mutex
	state workState

	// Replaceable for tests.
	providerFor func(name string) (tts.Provider, error)
	buildTrack  func(c *gin.Context, provider tts.Provider, opts tts.Options, sections []types.ScriptSection, dir string) (*types.NarrationTrack, error)
	renderVideo func(c *gin.Context, scenes []types.Scene, track *types.NarrationTrack, dir string) (*types.VideoArtifact, error)
}

// New assembles a Server from the shared pipeline components. store and
// uploader may be nil; the corresponding endpoints then return 503.
func New(cfg *config.Config, fetcher *news.Fetcher, structurer *script.Structurer, store *session.Store, uploader *publish.Uploader) *Server {
	s := &Server{
		cfg:        cfg,
		fetcher:    fetcher,
		structurer: structurer,
		store:      store,
		uploader:   uploader,
	}
	s.providerFor = tts.ForName
	s.buildTrack = func(c *gin.Context, provider tts.Provider, opts tts.Options, sections []types.ScriptSection, dir string) (*types.NarrationTrack, error) {
		return narration.New(provider, opts, cfg).Build(c.Request.Context(), sections, dir)
	}
	s.renderVideo = func(c *gin.Context, scenes []types.Scene, track *types.NarrationTrack, dir string) (*types.VideoArtifact, error) {
		return render.NewComposer(visualFromConfig(cfg)).Render(c.Request.Context(), scenes, track, dir)
	}
	return s
}

// Router builds the gin engine with all API routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/state", s.handleState)

		api.POST("/news/search", s.handleNewsSearch)
		api.POST("/news/select", s.handleNewsSelect)

		api.POST("/script", s.handleScriptGenerate)
		api.PUT("/script/sections/:index", s.handleScriptEdit)

		api.GET("/captions", s.handleCaptionsPreview)

		api.POST("/narration", s.handleNarration)
		api.POST("/render", s.handleRender)
		api.POST("/publish", s.handlePublish)

		api.GET("/sessions", s.handleSessionList)
		api.POST("/sessions/:id/save", s.handleSessionSave)
		api.POST("/sessions/:id/load", s.handleSessionLoad)
		api.DELETE("/sessions/:id", s.handleSessionDelete)
	}

	return r
}

// Run starts the HTTP server on the configured address.
func (s *Server) Run() error {
	log.Printf("[server] Listening on %s", s.cfg.Server.Addr)
	return s.Router().Run(s.cfg.Server.Addr)
}

func (s *Server) handleState(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.state)
}

type searchRequest struct {
	Query string `json:"query"`
	Max   int    `json:"max"`
}

func (s *Server) handleNewsSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Query == "" {
		req.Query = s.cfg.News.DefaultQuery
	}
	if req.Max <= 0 {
		req.Max = s.cfg.News.MaxArticles
	}

	articles, live, err := s.fetcher.Search(c.Request.Context(), req.Query, req.Max)
	if err != nil {
		s.writeError(c, err)
		return
	}

	runID := uuid.New().String()[:8]
	s.mu.Lock()
	s.state = workState{
		RunID:    runID,
		RunDir:   filepath.Join(s.cfg.Paths.Output, runID),
		Articles: articles,
		Live:     live,
	}
	s.mu.Unlock()

	resp := gin.H{"run_id": runID, "articles": articles, "live": live}
	if !live {
		resp["note"] = "live search unavailable; showing sample articles"
	}
	c.JSON(http.StatusOK, resp)
}

type selectRequest struct {
	Indices []int `json:"indices"`
}

func (s *Server) handleNewsSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.state.Articles) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "no articles fetched yet"})
		return
	}
	for _, i := range req.Indices {
		if i < 0 || i >= len(s.state.Articles) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("article index %d out of range", i)})
			return
		}
	}

	s.state.Selected = req.Indices
	s.state.Script = nil
	s.state.Track = nil
	s.state.Artifact = nil
	c.JSON(http.StatusOK, gin.H{"selected": len(req.Indices)})
}

type scriptRequest struct {
	TargetMinutes int    `json:"target_minutes"`
	Tone          string `json:"tone"`
	ChannelName   string `json:"channel_name"`
}

func (s *Server) handleScriptGenerate(c *gin.Context) {
	var req scriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TargetMinutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_minutes must be positive"})
		return
	}

	tone := types.ToneProfessional
	if req.Tone != "" {
		var err error
		if tone, err = script.ParseTone(req.Tone); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	articles := s.selectedArticles()
	if len(articles) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "no articles selected"})
		return
	}

	scr, err := s.structurer.Generate(c.Request.Context(), articles, script.Options{
		TargetMinutes: req.TargetMinutes,
		Tone:          tone,
		ChannelName:   req.ChannelName,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.mu.Lock()
	s.state.Script = scr
	s.state.Track = nil
	s.state.Artifact = nil
	s.mu.Unlock()

	resp := gin.H{"script": scr}
	if advisory := script.DurationAdvisory(scr); advisory != "" {
		resp["warning"] = advisory
	}
	c.JSON(http.StatusOK, resp)
}

type editRequest struct {
	Narration string `json:"narration"`
}

func (s *Server) handleScriptEdit(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid section index"})
		return
	}
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Script == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no script generated yet"})
		return
	}
	if err := script.ApplyEdit(s.state.Script, index, req.Narration, s.cfg.Script.WordsPerMinute); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The edited text no longer matches any synthesized audio.
	s.state.Track = nil
	s.state.Artifact = nil

	resp := gin.H{"script": s.state.Script}
	if advisory := script.DurationAdvisory(s.state.Script); advisory != "" {
		resp["warning"] = advisory
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCaptionsPreview(c *gin.Context) {
	s.mu.Lock()
	scr := s.state.Script
	track := s.state.Track
	s.mu.Unlock()

	if scr == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no script generated yet"})
		return
	}

	var caps []types.Caption
	if track != nil {
		caps = captions.ForTrack(scr, track, s.cfg.Captions.MaxChars)
	} else {
		caps = captions.ForScript(scr, s.cfg.Captions.MaxChars)
	}
	c.JSON(http.StatusOK, gin.H{"captions": caps, "measured": track != nil})
}

type narrationRequest struct {
	Provider string `json:"provider"`
	Voice    string `json:"voice"`
	Language string `json:"language"`
}

func (s *Server) handleNarration(c *gin.Context) {
	var req narrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	scr := s.state.Script
	runDir := s.state.RunDir
	s.mu.Unlock()

	if scr == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no script generated yet"})
		return
	}

	name := req.Provider
	if name == "" {
		name = s.cfg.TTS.Provider
	}
	provider, err := s.providerFor(name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	opts := tts.Options{
		Voice:    orDefault(req.Voice, s.cfg.TTS.Voice),
		Language: orDefault(req.Language, s.cfg.TTS.Language),
	}

	track, err := s.buildTrack(c, provider, opts, scr.Sections, filepath.Join(runDir, "audio"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.mu.Lock()
	s.state.Track = track
	s.state.Artifact = nil
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"track": track})
}

func (s *Server) handleRender(c *gin.Context) {
	s.mu.Lock()
	scr := s.state.Script
	track := s.state.Track
	runDir := s.state.RunDir
	s.mu.Unlock()

	if scr == nil || track == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "narration not built yet"})
		return
	}

	caps := captions.ForTrack(scr, track, s.cfg.Captions.MaxChars)
	scenes := render.BuildScenes(track, caps, visualFromConfig(s.cfg))

	artifact, err := s.renderVideo(c, scenes, track, filepath.Join(runDir, "video"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.mu.Lock()
	s.state.Artifact = artifact
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"artifact": artifact})
}

type publishRequest struct {
	Title      string `json:"title"`
	Visibility string `json:"visibility"`
}

func (s *Server) handlePublish(c *gin.Context) {
	if s.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "publishing not configured"})
		return
	}
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	scr := s.state.Script
	artifact := s.state.Artifact
	articles := s.selectedArticlesLocked()
	s.mu.Unlock()

	if scr == nil || artifact == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no rendered video to publish"})
		return
	}

	meta := publish.BuildMetadata(scr, articles, req.Title, req.Visibility)
	id, url, err := s.uploader.Run(c.Request.Context(), artifact.Path, meta)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.mu.Lock()
	s.state.VideoURL = url
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"video_id": id, "video_url": url})
}

func (s *Server) handleSessionList(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store not configured"})
		return
	}
	infos, err := s.store.List()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": infos})
}

func (s *Server) handleSessionSave(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store not configured"})
		return
	}

	s.mu.Lock()
	articles := s.state.Articles
	scr := s.state.Script
	s.mu.Unlock()

	if len(articles) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing to save"})
		return
	}
	if err := s.store.Save(c.Param("id"), articles, scr); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": c.Param("id")})
}

func (s *Server) handleSessionLoad(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store not configured"})
		return
	}
	rec, err := s.store.Load(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	s.mu.Lock()
	s.state = workState{
		RunID:    uuid.New().String()[:8],
		Articles: rec.Articles,
		Script:   rec.Script,
	}
	s.state.RunDir = filepath.Join(s.cfg.Paths.Output, s.state.RunID)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"loaded": rec.ID, "articles": len(rec.Articles), "has_script": rec.Script != nil})
}

func (s *Server) handleSessionDelete(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store not configured"})
		return
	}
	if err := s.store.Delete(c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// selectedArticles returns the operator's chosen articles, or all fetched
// articles when no selection was made.
func (s *Server) selectedArticles() []types.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedArticlesLocked()
}

func (s *Server) selectedArticlesLocked() []types.Article {
	if len(s.state.Selected) == 0 {
		return s.state.Articles
	}
	out := make([]types.Article, 0, len(s.state.Selected))
	for _, i := range s.state.Selected {
		out = append(out, s.state.Articles[i])
	}
	return out
}

// writeError maps pipeline errors to HTTP statuses, exposing the typed detail
// the operator needs to decide what to retry.
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		searchErr      *news.SearchUnavailableError
		genErr         *llm.GenerationError
		synthErr       *tts.SynthesisError
		renderErr      *render.RenderError
		unsupportedErr *tts.UnsupportedProviderError
	)
	switch {
	case errors.As(err, &unsupportedErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": unsupportedErr.Error(), "provider": unsupportedErr.Name})
	case errors.As(err, &searchErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": searchErr.Error()})
	case errors.As(err, &genErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": genErr.Error()})
	case errors.As(err, &synthErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":         synthErr.Error(),
			"section_index": synthErr.SectionIndex,
			"provider":      synthErr.Provider,
		})
	case errors.As(err, &renderErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  renderErr.Error(),
			"scenes": renderErr.Scenes,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func visualFromConfig(cfg *config.Config) types.VisualConfig {
	return types.VisualConfig{
		BackgroundColor: cfg.Video.BackgroundColor,
		TextColor:       cfg.Video.TextColor,
		FontSize:        cfg.Video.FontSize,
		CaptionsEnabled: cfg.Video.CaptionsEnabled,
		Resolution:      cfg.Video.Resolution,
		FrameRate:       cfg.Video.FPS,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
