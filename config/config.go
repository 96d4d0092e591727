package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	News     NewsConfig     `yaml:"news"`
	Script   ScriptConfig   `yaml:"script"`
	Captions CaptionsConfig `yaml:"captions"`
	TTS      TTSConfig      `yaml:"tts"`
	Video    VideoConfig    `yaml:"video"`
	Publish  PublishConfig  `yaml:"publish"`
	Server   ServerConfig   `yaml:"server"`
	Paths    PathsConfig    `yaml:"paths"`
}

type NewsConfig struct {
	DefaultQuery string   `yaml:"default_query"`
	MaxArticles  int      `yaml:"max_articles"`
	Subreddits   []string `yaml:"subreddits"`
}

type ScriptConfig struct {
	WordsPerMinute int     `yaml:"words_per_minute"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
}

type CaptionsConfig struct {
	MaxChars int `yaml:"max_chars"`
}

type TTSConfig struct {
	Provider    string `yaml:"provider"`
	Voice       string `yaml:"voice"`
	Language    string `yaml:"language"`
	Concurrency int    `yaml:"concurrency"`
}

type VideoConfig struct {
	BackgroundColor string `yaml:"background_color"`
	TextColor       string `yaml:"text_color"`
	FontSize        int    `yaml:"font_size"`
	CaptionsEnabled bool   `yaml:"captions_enabled"`
	Resolution      string `yaml:"resolution"`
	FPS             int    `yaml:"fps"`
}

type PublishConfig struct {
	Visibility        string `yaml:"visibility"`
	CategoryID        string `yaml:"category_id"`
	DefaultLanguage   string `yaml:"default_language"`
	MadeForKids       bool   `yaml:"made_for_kids"`
	NotifySubscribers bool   `yaml:"notify_subscribers"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
	DB     string `yaml:"db"`
}

// Load reads config.yaml and returns a Config with defaults applied for any
// field left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a Config with every field at its default value.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.News.DefaultQuery == "" {
		c.News.DefaultQuery = "artificial intelligence machine learning"
	}
	if c.News.MaxArticles == 0 {
		c.News.MaxArticles = 10
	}
	if c.Script.WordsPerMinute == 0 {
		c.Script.WordsPerMinute = 150
	}
	if c.Script.Model == "" {
		c.Script.Model = "gpt-4o-mini"
	}
	if c.Script.Temperature == 0 {
		c.Script.Temperature = 0.7
	}
	if c.Script.MaxTokens == 0 {
		c.Script.MaxTokens = 4096
	}
	if c.Captions.MaxChars == 0 {
		c.Captions.MaxChars = 80
	}
	if c.TTS.Provider == "" {
		c.TTS.Provider = "gtts"
	}
	if c.TTS.Voice == "" {
		c.TTS.Voice = "alloy"
	}
	if c.TTS.Language == "" {
		c.TTS.Language = "en"
	}
	if c.TTS.Concurrency == 0 {
		c.TTS.Concurrency = 4
	}
	if c.Video.BackgroundColor == "" {
		c.Video.BackgroundColor = "#1a1a2e"
	}
	if c.Video.TextColor == "" {
		c.Video.TextColor = "#ffffff"
	}
	if c.Video.FontSize == 0 {
		c.Video.FontSize = 48
	}
	if c.Video.Resolution == "" {
		c.Video.Resolution = "1920x1080"
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = 24
	}
	if c.Publish.Visibility == "" {
		c.Publish.Visibility = "private"
	}
	if c.Publish.CategoryID == "" {
		c.Publish.CategoryID = "28" // Science & Technology
	}
	if c.Publish.DefaultLanguage == "" {
		c.Publish.DefaultLanguage = "en"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "./output"
	}
	if c.Paths.DB == "" {
		c.Paths.DB = "./output/sessions.db"
	}
}
