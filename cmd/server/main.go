package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"quizmatch/backend/internal/config"
	"quizmatch/backend/internal/game"
	"quizmatch/backend/internal/handler"
	"quizmatch/backend/internal/hub"
	"quizmatch/backend/internal/store"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "quizmatch/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Quizmatch API
// @version         1.0
// @description     This is the API for the Quizmatch lobby coordinator.
// @host            localhost:8080
// @BasePath        /api/v1
func main() {
	// Pick the lobby store: a shared Postgres database when configured,
	// otherwise a single-process in-memory store.
	var lobbyStore store.Store
	if config.AppConfig.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(config.AppConfig.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open lobby store: %v", err)
		}
		lobbyStore = pg
	} else {
		log.Println("DATABASE_URL not set, using in-memory lobby store")
		lobbyStore = store.NewMemoryStore()
	}

	handler.Coordinator = game.NewCoordinator(lobbyStore, hub.GlobalHub, game.Options{
		Capacity:      config.AppConfig.LobbyCapacity,
		Rounds:        config.AppConfig.QuestionCount,
		CountdownFrom: config.AppConfig.CountdownFrom,
		TickInterval:  time.Second,
		CleanupDelay:  time.Duration(config.AppConfig.CleanupDelay) * time.Second,
	})

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/stream", handler.StreamEvents)
		apiV1.POST("/match", handler.FindMatch)

		lobbyRoutes := apiV1.Group("/lobbies")
		{
			lobbyRoutes.GET("/:id", handler.GetLobbyByID)
			lobbyRoutes.POST("/:id/answer", handler.SubmitAnswer)
			lobbyRoutes.POST("/:id/finish", handler.QuizFinished)
		}
	}

	addr := ":" + config.AppConfig.Port
	fmt.Println("Server is running on " + addr)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(addr))
}
