package routes

import (
	"github.com/gin-gonic/gin"

	"datacatalog/internal/handlers"
)

type CatalogRoutes struct {
	handler *handlers.CatalogHandler
}

func NewCatalogRoutes(handler *handlers.CatalogHandler) *CatalogRoutes {
	return &CatalogRoutes{handler: handler}
}

func (r *CatalogRoutes) RegisterRoutes(router *gin.RouterGroup) {
	catalog := router.Group("/catalog")
	{
		catalog.POST("/schema/analyze", r.handler.AnalyzeSchema)
		catalog.POST("/schema/diagram", r.handler.RelationshipDiagram)
		catalog.POST("/import", r.handler.ImportData)
	}
}
