package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"aiml-news-pipeline/config"
	"aiml-news-pipeline/llm"
	"aiml-news-pipeline/news"
	"aiml-news-pipeline/publish"
	"aiml-news-pipeline/script"
	"aiml-news-pipeline/server"
	"aiml-news-pipeline/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Could not read %s (%v), using defaults", configPath, err)
		cfg = config.Default()
	}

	if err := os.MkdirAll(cfg.Paths.Output, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	store, err := session.Open(cfg.Paths.DB)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer store.Close()

	// Without an API key the pipeline still works end to end: sample articles
	// and template scripts instead of live search and generated prose.
	var completer llm.Completer
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		completer = llm.NewOpenAI(apiKey, cfg.Script.Model, cfg.Script.Temperature)
		log.Println("✅ Language model connected")
	} else {
		log.Println("⚠️  OPENAI_API_KEY not set — running in offline mode")
	}

	srv := server.New(cfg,
		news.New(cfg, completer),
		script.New(cfg, completer),
		store,
		publish.New(cfg),
	)

	if err := srv.Run(); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
