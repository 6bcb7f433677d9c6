package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/notebook-buddy/backend/internal/http/response"
	"github.com/notebook-buddy/backend/internal/services"
)

// PineconeHandler exposes index administration plus the record pipeline
// (embed, tenant-stamp, upsert, search, delete).
type PineconeHandler struct {
	indexService  services.IndexAdminService
	vectorService services.VectorService
}

func NewPineconeHandler(indexService services.IndexAdminService, vectorService services.VectorService) *PineconeHandler {
	return &PineconeHandler{indexService: indexService, vectorService: vectorService}
}

func (ph *PineconeHandler) CreateIndex(c *gin.Context) {
	var req services.CreateIndexParams
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	desc, err := ph.indexService.CreateIndex(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, desc)
}

func (ph *PineconeHandler) CreateIndexWithEmbedding(c *gin.Context) {
	var req services.CreateIndexWithEmbeddingParams
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	desc, err := ph.indexService.CreateIndexWithEmbedding(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, desc)
}

func (ph *PineconeHandler) ListIndexes(c *gin.Context) {
	indexes, err := ph.indexService.ListIndexes(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"indexes": indexes})
}

func (ph *PineconeHandler) DescribeIndex(c *gin.Context) {
	desc, err := ph.indexService.DescribeIndex(c.Request.Context(), c.Param("index_name"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, desc)
}

func (ph *PineconeHandler) DeleteIndex(c *gin.Context) {
	if err := ph.indexService.DeleteIndex(c.Request.Context(), c.Param("index_name")); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

func (ph *PineconeHandler) IndexStats(c *gin.Context) {
	stats, err := ph.indexService.IndexStats(c.Request.Context(), c.Param("index_name"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

func (ph *PineconeHandler) UpsertRecords(c *gin.Context) {
	var req struct {
		Records   []services.VectorRecord `json:"records" binding:"required"`
		Namespace string                  `json:"namespace"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	result, err := ph.vectorService.UpsertRecords(c.Request.Context(), c.Param("index_name"), req.Namespace, req.Records)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if len(result.Warnings) > 0 {
		response.RespondOKWithWarnings(c, result, result.Warnings)
		return
	}
	response.RespondOK(c, result)
}

func (ph *PineconeHandler) UpsertVectors(c *gin.Context) {
	var req struct {
		Vectors   []services.RawVector `json:"vectors" binding:"required"`
		Namespace string               `json:"namespace"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	result, err := ph.vectorService.UpsertVectors(c.Request.Context(), c.Param("index_name"), req.Namespace, req.Vectors)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (ph *PineconeHandler) QueryVectors(c *gin.Context) {
	var req struct {
		Vector          []float32 `json:"vector" binding:"required"`
		TopK            int       `json:"top_k"`
		Namespace       string    `json:"namespace"`
		IncludeMetadata *bool     `json:"include_metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	matches, err := ph.vectorService.QueryVectors(c.Request.Context(), c.Param("index_name"), services.QueryParams{
		Vector:          req.Vector,
		TopK:            req.TopK,
		Namespace:       req.Namespace,
		ExcludeMetadata: req.IncludeMetadata != nil && !*req.IncludeMetadata,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"matches": matches})
}

func (ph *PineconeHandler) ListRecords(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	records, err := ph.vectorService.ListRecords(c.Request.Context(), c.Param("index_name"), c.Query("namespace"), limit)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"records": records})
}

func (ph *PineconeHandler) SearchRecords(c *gin.Context) {
	var req struct {
		TextQuery string   `json:"text_query" binding:"required"`
		TopK      int      `json:"top_k"`
		Namespace string   `json:"namespace"`
		Rerank    bool     `json:"rerank"`
		IDs       []string `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	matches, warnings, err := ph.vectorService.SearchRecords(c.Request.Context(), c.Param("index_name"), services.SearchParams{
		Query:     req.TextQuery,
		TopK:      req.TopK,
		Namespace: req.Namespace,
		Rerank:    req.Rerank,
		IDs:       req.IDs,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if len(warnings) > 0 {
		response.RespondOKWithWarnings(c, gin.H{"matches": matches}, warnings)
		return
	}
	response.RespondOK(c, gin.H{"matches": matches})
}

func (ph *PineconeHandler) DeleteRecords(c *gin.Context) {
	var req struct {
		IDs       []string `json:"ids" binding:"required"`
		Namespace string   `json:"namespace"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	count, err := ph.vectorService.DeleteRecords(c.Request.Context(), c.Param("index_name"), req.Namespace, req.IDs)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted_count": count})
}
