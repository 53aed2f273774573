package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datacatalog/internal/handlers"
)

func RegisterRoutes(router *gin.Engine, catalogHandler *handlers.CatalogHandler) {
	api := router.Group("/api/v1")

	catalogRoutes := NewCatalogRoutes(catalogHandler)
	catalogRoutes.RegisterRoutes(api)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
