package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiml-news-pipeline/config"
	"aiml-news-pipeline/news"
	"aiml-news-pipeline/script"
	"aiml-news-pipeline/session"
	"aiml-news-pipeline/tts"
	"aiml-news-pipeline/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProvider struct{}

func (fakeProvider) Name() string { return "fake" }
func (fakeProvider) Synthesize(_ context.Context, _ string, _ tts.Options) ([]byte, error) {
	return []byte("mp3"), nil
}

// newTestServer wires a fully offline server: mock news, template scripts, and
// stubbed narration/render stages.
func newTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Output = t.TempDir()
	cfg.Video.CaptionsEnabled = true

	store, err := session.Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	s := New(cfg, news.New(cfg, nil), script.New(cfg, nil), store, nil)
	s.providerFor = func(name string) (tts.Provider, error) {
		if name == "fake" {
			return fakeProvider{}, nil
		}
		return tts.ForName(name)
	}
	s.buildTrack = func(_ *gin.Context, _ tts.Provider, _ tts.Options, sections []types.ScriptSection, _ string) (*types.NarrationTrack, error) {
		track := &types.NarrationTrack{File: "narration_final.mp3"}
		for i := range sections {
			track.Segments = append(track.Segments, types.AudioSegment{
				SectionIndex: i, File: fmt.Sprintf("s%d.mp3", i), DurationSeconds: 10,
			})
			track.TotalSeconds += 10
		}
		return track, nil
	}
	s.renderVideo = func(_ *gin.Context, scenes []types.Scene, track *types.NarrationTrack, dir string) (*types.VideoArtifact, error) {
		return &types.VideoArtifact{
			Path:            filepath.Join(dir, "final_video.mp4"),
			DurationSeconds: track.TotalSeconds,
			Resolution:      cfg.Video.Resolution,
		}, nil
	}
	return s, s.Router()
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	} else {
		buf.WriteString("{}")
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]json.RawMessage{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	}
	return w, out
}

func TestFullPipelineFlow(t *testing.T) {
	_, r := newTestServer(t)

	// Search falls back to samples when no language model is wired.
	w, body := doJSON(t, r, http.MethodPost, "/api/news/search", gin.H{"max": 5})
	require.Equal(t, http.StatusOK, w.Code)
	var articles []types.Article
	require.NoError(t, json.Unmarshal(body["articles"], &articles))
	assert.Len(t, articles, 5)
	assert.Contains(t, string(body["note"]), "sample articles")

	w, _ = doJSON(t, r, http.MethodPost, "/api/news/select", gin.H{"indices": []int{0, 2}})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = doJSON(t, r, http.MethodPost, "/api/script", gin.H{
		"target_minutes": 4, "tone": "casual", "channel_name": "AI Weekly",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var scr types.Script
	require.NoError(t, json.Unmarshal(body["script"], &scr))
	assert.Len(t, scr.Sections, 4, "intro + 2 stories + outro")
	assert.Equal(t, types.ToneCasual, scr.Tone)

	w, body = doJSON(t, r, http.MethodGet, "/api/captions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "false", string(body["measured"]))

	w, body = doJSON(t, r, http.MethodPost, "/api/narration", gin.H{"provider": "fake"})
	require.Equal(t, http.StatusOK, w.Code)
	var track types.NarrationTrack
	require.NoError(t, json.Unmarshal(body["track"], &track))
	assert.Len(t, track.Segments, 4)

	w, body = doJSON(t, r, http.MethodPost, "/api/render", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var artifact types.VideoArtifact
	require.NoError(t, json.Unmarshal(body["artifact"], &artifact))
	assert.Contains(t, artifact.Path, "final_video.mp4")
	assert.InDelta(t, 40.0, artifact.DurationSeconds, 1e-9)
}

func TestStageOrderEnforced(t *testing.T) {
	_, r := newTestServer(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/news/select", gin.H{"indices": []int{0}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/narration", gin.H{"provider": "fake"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/render", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/captions", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestScriptValidation(t *testing.T) {
	_, r := newTestServer(t)
	doJSON(t, r, http.MethodPost, "/api/news/search", gin.H{"max": 3})

	w, _ := doJSON(t, r, http.MethodPost, "/api/script", gin.H{"target_minutes": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/script", gin.H{"target_minutes": 4, "tone": "sarcastic"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectValidatesIndices(t *testing.T) {
	_, r := newTestServer(t)
	doJSON(t, r, http.MethodPost, "/api/news/search", gin.H{"max": 3})

	w, _ := doJSON(t, r, http.MethodPost, "/api/news/select", gin.H{"indices": []int{5}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnsupportedProvider(t *testing.T) {
	_, r := newTestServer(t)
	doJSON(t, r, http.MethodPost, "/api/news/search", gin.H{"max": 3})
	doJSON(t, r, http.MethodPost, "/api/script", gin.H{"target_minutes": 2})

	w, body := doJSON(t, r, http.MethodPost, "/api/narration", gin.H{"provider": "espeak"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `"espeak"`, string(body["provider"]))
}

func TestEditInvalidatesNarration(t *testing.T) {
	s, r := newTestServer(t)
	doJSON(t, r, http.MethodPost, "/api/news/search", gin.H{"max": 3})
	doJSON(t, r, http.MethodPost, "/api/script", gin.H{"target_minutes": 3})

	w, _ := doJSON(t, r, http.MethodPost, "/api/narration", gin.H{"provider": "fake"})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := doJSON(t, r, http.MethodPut, "/api/script/sections/1", gin.H{"narration": "Rewritten story text."})
	require.Equal(t, http.StatusOK, w.Code)
	var scr types.Script
	require.NoError(t, json.Unmarshal(body["script"], &scr))
	assert.Equal(t, "Rewritten story text.", scr.Sections[1].Narration)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Nil(t, s.state.Track, "audio no longer matches the edited script")
	assert.Nil(t, s.state.Artifact)
}

func TestEditOutOfRange(t *testing.T) {
	_, r := newTestServer(t)
	doJSON(t, r, http.MethodPost, "/api/news/search", gin.H{"max": 3})
	doJSON(t, r, http.MethodPost, "/api/script", gin.H{"target_minutes": 3})

	w, _ := doJSON(t, r, http.MethodPut, "/api/script/sections/99", gin.H{"narration": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionSaveLoad(t *testing.T) {
	_, r := newTestServer(t)
	doJSON(t, r, http.MethodPost, "/api/news/search", gin.H{"max": 3})
	doJSON(t, r, http.MethodPost, "/api/script", gin.H{"target_minutes": 3})

	w, _ := doJSON(t, r, http.MethodPost, "/api/sessions/weekly/save", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// A fresh search wipes the state; loading restores it.
	doJSON(t, r, http.MethodPost, "/api/news/search", gin.H{"max": 1})
	w, body := doJSON(t, r, http.MethodPost, "/api/sessions/weekly/load", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", string(body["articles"]))
	assert.Equal(t, "true", string(body["has_script"]))

	w, body = doJSON(t, r, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var infos []session.Info
	require.NoError(t, json.Unmarshal(body["sessions"], &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "weekly", infos[0].ID)

	w, _ = doJSON(t, r, http.MethodDelete, "/api/sessions/weekly", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSessionLoadMissing(t *testing.T) {
	_, r := newTestServer(t)
	w, _ := doJSON(t, r, http.MethodPost, "/api/sessions/nope/load", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
