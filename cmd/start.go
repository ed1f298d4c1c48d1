/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/tieubaoca/arxchive-be/config"
	"github.com/tieubaoca/arxchive-be/database"
	"github.com/tieubaoca/arxchive-be/handler"
	"github.com/tieubaoca/arxchive-be/middleware"
	"github.com/tieubaoca/arxchive-be/repository"
	"github.com/tieubaoca/arxchive-be/service"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Arxchive chat server",
	Long:  `Starts the server handling paper discovery, ingestion and chat.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}

		var aiService service.AIService
		switch cfg.AIProvider {
		case "gemini":
			aiService, err = service.NewGeminiService(cfg.GeminiAPIKeys(), cfg.Model)
			if err != nil {
				log.Fatalf("Failed to create Gemini service: %v", err)
			}
		default:
			aiService = service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model)
		}

		var sessionStore repository.SessionStore
		switch cfg.SessionStoreConfig.Backend {
		case "redis":
			sessionStore, err = repository.NewRedisSessionStore(cfg.SessionStoreConfig.RedisAddr)
			if err != nil {
				log.Fatalf("Failed to connect to Redis: %v", err)
			}
		default:
			sessionStore = repository.NewMemorySessionStore()
		}

		mongoDb, err := database.NewMongoDatabase(cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}

		// init repo
		userRepo := repository.NewUserRepo(mongoDb.Collection("users"))

		// init services
		userService := service.NewUserService(userRepo)
		arxivService := service.NewArxivService(nil, cfg.ArxivConfig.MaxRetries)
		stage := service.NewHTTPStage(cfg.StageConfig.Endpoint, nil)
		ingestService := service.NewIngestService(cfg.FilesDir, cfg.StageConfig.DestPrefix, stage, nil)
		chatService := service.NewChatService(aiService, weaviateDb, sessionStore)
		wsService := service.NewWebSocketService(chatService)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		loginHandler := handler.NewLoginHandler(userService)
		searchHandler := handler.NewSearchHandler(arxivService, ingestService, sessionStore)
		chatHandler := handler.NewChatHandler(chatService, wsService, sessionStore)
		documentHandler := handler.NewDocumentHandler(cfg.FilesDir)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		apiV1.POST("/login", loginHandler.HandleLogin)

		// Protected user routes
		userRoutes := apiV1.Group("/")
		userRoutes.Use(middleware.AuthMiddleware)
		{
			userRoutes.POST("/papers/search", searchHandler.HandleSearchPapers)
			userRoutes.POST("/papers/select", searchHandler.HandleSelectPaper)
			userRoutes.POST("/chat", chatHandler.HandleAsk)
			userRoutes.POST("/chat/reset", chatHandler.HandleReset)
			userRoutes.GET("/chat/history", chatHandler.HandleHistory)
			userRoutes.GET("/pdf", documentHandler.ServeDocument)
			userRoutes.GET("/ws", chatHandler.HandleWebsocket)
		}

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
	startServerCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
}
