package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"datacatalog/internal/config"
	"datacatalog/internal/handlers"
	"datacatalog/internal/routes"
)

// NewServer wires the catalog handlers into a configured HTTP server. Source
// database connections are opened per request from the request body, so no
// pool is held at startup.
func NewServer() *http.Server {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	catalogHandler := handlers.NewCatalogHandler(cfg)

	router := gin.Default()
	router.Use(cors.Default())
	routes.RegisterRoutes(router, catalogHandler)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
}
