package main

import (
	"context"
	"log"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"

	"github.com/maxagent/rag/controller"
	"github.com/maxagent/rag/services"
)

func main() {
	cfg, err := services.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	if cfg.UnidocLicenseKey != "" {
		if err := services.InitPDFLicense(cfg.UnidocLicenseKey); err != nil {
			log.Printf("WARN: Failed to set Unidoc license key: %v. PDF extraction will fail.", err)
		}
	} else {
		log.Println("WARN: UNIDOC_LICENSE_KEY not set. PDF extraction will fail.")
	}

	ctx := context.Background()

	var embedder services.Embedder
	var completer services.Completer
	switch cfg.Provider {
	case services.ProviderGemini:
		provider, err := services.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
		if err != nil {
			log.Fatalf("FATAL: Failed to create Gemini client: %v", err)
		}
		embedder, completer = provider, provider
	default:
		provider, err := services.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		if err != nil {
			log.Fatalf("FATAL: Failed to create OpenAI client: %v", err)
		}
		embedder, completer = provider, provider
	}
	log.Printf("Using %s provider (chat model %s, embedding model %s)", cfg.Provider, cfg.ChatModel, cfg.EmbeddingModel)

	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	index, err := services.NewVectorIndex(ctx, chromaClient, cfg.CollectionName, embedder, cfg.TopK)
	if err != nil {
		log.Fatalf("FATAL: Failed to open collection %q: %v", cfg.CollectionName, err)
	}

	chunker := services.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	ingestion := services.NewIngestionService(chunker, index, cfg.MaxFileSize)
	assembler := services.NewContextAssembler(index, cfg.TopK)
	chat := services.NewChatService(assembler, completer, services.CompletionOptions{
		Model:       cfg.ChatModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	sessions := services.NewSessionStore()

	if cfg.WatchDir != "" {
		watcherSession, _ := sessions.Get("watcher")
		watcher := services.NewWatcherService(ingestion, watcherSession)
		go watcher.WatchDirectory(ctx, cfg.WatchDir)
	}

	ragController := controller.NewRAGController(ingestion, chat, index, sessions)

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Max RAG API",
			"version": "1.0.0",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/documents", ragController.IngestDocuments)
		apiV1.GET("/documents", ragController.ListDocuments)
		apiV1.POST("/search", ragController.Search)
		apiV1.POST("/chat", ragController.Chat)
		apiV1.GET("/chat/history", ragController.GetHistory)
		apiV1.DELETE("/chat/history", ragController.ClearHistory)
		apiV1.GET("/stats", ragController.Stats)
		apiV1.POST("/reset", ragController.Reset)
	}

	log.Printf("Max RAG backend starting on http://localhost:%s", cfg.Port)
	log.Printf("Health check available at: http://localhost:%s/health", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
