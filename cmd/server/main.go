package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/yangwenmai/codeforge/internal/api"
	"github.com/yangwenmai/codeforge/internal/config"
	"github.com/yangwenmai/codeforge/internal/engine"
	"github.com/yangwenmai/codeforge/internal/project"
	"github.com/yangwenmai/codeforge/internal/provider"
	"github.com/yangwenmai/codeforge/internal/store"
)

func main() {
	cfg := config.Load()

	// Open SQLite job ledger.
	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	s, err := store.New(db)
	if err != nil {
		log.Fatalf("init store: %v", err)
	}

	// Build provider clients.
	registry := provider.NewRegistry(cfg.ProviderDefault)
	var chatClient provider.ChatClient

	if cfg.UseStubs() {
		log.Println("no provider API key configured, using stub providers")
		stub := &provider.StubClient{}
		registry.Register("openai", stub)
		registry.Register("azure", stub)
		registry.Register("stub", stub)
		chatClient = stub
	} else {
		openai := provider.NewOpenAIClient(cfg.OpenAI.KeyEnv,
			provider.WithBaseURL(cfg.OpenAI.BaseURL),
			provider.WithModel(cfg.OpenAI.Model),
			provider.WithTimeout(cfg.OpenAI.Timeout),
		)
		azure := provider.NewAzureClient(cfg.Azure.Endpoint, cfg.Azure.KeyEnv,
			provider.WithDeployment(cfg.Azure.Deployment),
			provider.WithAPIVersion(cfg.Azure.APIVersion),
			provider.WithAzureTimeout(cfg.Azure.Timeout),
		)
		registry.Register("openai", openai)
		registry.Register("azure", azure)

		switch cfg.ChatProvider {
		case "openai":
			chatClient = openai
		default:
			chatClient = azure
		}
	}

	// Build pipelines.
	docs := project.NewHTTPDocFetcher(cfg.DocTimeout, cfg.MaxDocTextLength)
	generator := engine.NewGenerator(registry, cfg, s)
	chat := engine.NewChatPipeline(chatClient, docs, cfg, s)

	// Start API server.
	srv := api.New(generator, chat, s, cfg)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Handler(),
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("shutting down...")
		httpServer.Shutdown(context.Background())
	}()

	fmt.Printf("codeforge server listening on http://localhost:%s\n", cfg.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
