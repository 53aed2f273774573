package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"datacatalog/internal/analyzer"
	"datacatalog/internal/config"
	"datacatalog/internal/connector"
	"datacatalog/internal/diagram"
	"datacatalog/internal/importer"
	"datacatalog/internal/models"
	"datacatalog/internal/responses"
)

type CatalogHandler struct {
	cfg *config.Config
}

func NewCatalogHandler(cfg *config.Config) *CatalogHandler {
	return &CatalogHandler{cfg: cfg}
}

type SourceRequest struct {
	Type   string `json:"type" binding:"required"`
	DSN    string `json:"dsn" binding:"required"`
	Schema string `json:"schema"`
}

type CatalogRequest struct {
	Source  SourceRequest        `json:"source" binding:"required"`
	Options models.ImportOptions `json:"options"`
}

// AnalyzeSchema handles POST /api/v1/catalog/schema/analyze
func (h *CatalogHandler) AnalyzeSchema(c *gin.Context) {
	req, conn, ok := h.connect(c)
	if !ok {
		return
	}
	defer conn.Close()

	schema, err := analyzer.NewSchemaAnalyzer(conn).Analyze(c.Request.Context(), req.Options)
	if err != nil {
		responses.Fail(c, http.StatusBadGateway, err, "Failed to analyze source schema")
		return
	}

	responses.Success(c, http.StatusOK, schema, "Schema analyzed successfully")
}

// RelationshipDiagram handles POST /api/v1/catalog/schema/diagram
func (h *CatalogHandler) RelationshipDiagram(c *gin.Context) {
	req, conn, ok := h.connect(c)
	if !ok {
		return
	}
	defer conn.Close()

	schema, err := analyzer.NewSchemaAnalyzer(conn).Analyze(c.Request.Context(), req.Options)
	if err != nil {
		responses.Fail(c, http.StatusBadGateway, err, "Failed to analyze source schema")
		return
	}

	format := c.DefaultQuery("format", "text")
	var rendered string
	switch format {
	case "mermaid":
		rendered = diagram.Mermaid(schema)
	case "text":
		rendered = diagram.Format(schema)
	default:
		responses.Fail(c, http.StatusBadRequest, nil, "Unknown diagram format: "+format)
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"format":  format,
		"diagram": rendered,
	}, "Relationship diagram generated successfully")
}

// ImportData handles POST /api/v1/catalog/import
func (h *CatalogHandler) ImportData(c *gin.Context) {
	req, conn, ok := h.connect(c)
	if !ok {
		return
	}
	defer conn.Close()

	runID := uuid.New()
	records, err := importer.NewRelationalImporter(conn).Import(c.Request.Context(), req.Options)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, importer.ErrPrimaryTableNotFound) {
			status = http.StatusNotFound
		}
		log.Printf("import %s failed: %v", runID, err)
		responses.Fail(c, status, err, "Failed to import relational data")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{
		"run_id":  runID,
		"count":   len(records),
		"records": records,
	}, "Relational data imported successfully")
}

// connect binds the request body and opens a connector to the described
// source, answering the error response itself on failure.
func (h *CatalogHandler) connect(c *gin.Context) (*CatalogRequest, connector.Connector, bool) {
	var req CatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return nil, nil, false
	}

	if req.Options.MaxDepth <= 0 {
		req.Options.MaxDepth = h.cfg.MaxDepth
	}
	if req.Options.MaxRecords <= 0 {
		req.Options.MaxRecords = h.cfg.MaxRecords
	}

	conn, err := connector.New(c.Request.Context(), req.Source.Type, req.Source.DSN, req.Source.Schema)
	if err != nil {
		responses.Fail(c, http.StatusBadGateway, err, "Failed to connect to data source")
		return nil, nil, false
	}
	return &req, conn, true
}
