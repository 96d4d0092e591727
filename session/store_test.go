package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiml-news-pipeline/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	articles := []types.Article{
		{Title: "A", Source: "Reuters", Summary: "sum", URL: "https://a", PublishedDate: "2026-02-01"},
		{Title: "B", Source: "Wired"},
	}
	script := &types.Script{
		TargetMinutes: 5,
		Tone:          types.ToneProfessional,
		ChannelName:   "AI Insights",
		Sections: []types.ScriptSection{
			{Kind: types.SectionIntro, Narration: "hello", EstimatedSeconds: 4},
		},
		EstimatedSeconds: 4,
	}

	require.NoError(t, s.Save("weekly-roundup", articles, script))

	rec, err := s.Load("weekly-roundup")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, articles, rec.Articles)
	require.NotNil(t, rec.Script)
	assert.Equal(t, types.ToneProfessional, rec.Script.Tone)
	assert.Len(t, rec.Script.Sections, 1)
}

func TestLoadMissing(t *testing.T) {
	s := openTestStore(t)
	rec, err := s.Load("nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSaveWithoutScript(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save("draft", []types.Article{{Title: "A"}}, nil))

	rec, err := s.Load("draft")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Nil(t, rec.Script)
	assert.Len(t, rec.Articles, 1)
}

func TestSaveReplaces(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save("id", []types.Article{{Title: "old"}}, nil))
	require.NoError(t, s.Save("id", []types.Article{{Title: "new"}, {Title: "two"}}, nil))

	rec, err := s.Load("id")
	require.NoError(t, err)
	require.Len(t, rec.Articles, 2)
	assert.Equal(t, "new", rec.Articles[0].Title)
}

func TestSaveEmptyID(t *testing.T) {
	s := openTestStore(t)
	require.Error(t, s.Save("", nil, nil))
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save("one", []types.Article{{Title: "A"}}, nil))
	require.NoError(t, s.Save("two", []types.Article{{Title: "A"}, {Title: "B"}}, &types.Script{}))

	infos, err := s.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)

	byID := map[string]Info{}
	for _, info := range infos {
		byID[info.ID] = info
	}
	assert.Equal(t, 1, byID["one"].Articles)
	assert.False(t, byID["one"].HasScript)
	assert.Equal(t, 2, byID["two"].Articles)
	assert.True(t, byID["two"].HasScript)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save("gone", []types.Article{{Title: "A"}}, nil))
	require.NoError(t, s.Delete("gone"))

	rec, err := s.Load("gone")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, s.Delete("never-existed"))
}
