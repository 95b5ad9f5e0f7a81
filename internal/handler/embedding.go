package handler

import (
	"net/http"

	"estatecore/internal/service"

	"github.com/gin-gonic/gin"
)

// EmbeddingHandler handles embedding maintenance HTTP requests.
type EmbeddingHandler struct {
	indexer *service.DocumentIndexer
}

// NewEmbeddingHandler creates a new embedding handler.
func NewEmbeddingHandler(indexer *service.DocumentIndexer) *EmbeddingHandler {
	return &EmbeddingHandler{indexer: indexer}
}

type reindexRequest struct {
	BatchSize int `json:"batch_size"`
}

type reindexResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Reindex handles POST /api/v1/embeddings/reindex. It backfills embeddings
// for documents that have none yet.
func (h *EmbeddingHandler) Reindex(c *gin.Context) {
	if !h.indexer.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No embedding provider configured"})
		return
	}

	req := reindexRequest{BatchSize: 100}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}
	if req.BatchSize <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch_size must be positive"})
		return
	}

	success, failures, err := h.indexer.ReindexMissing(c.Request.Context(), req.BatchSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reindex failed: " + err.Error()})
		return
	}

	response := reindexResponse{
		Success: success,
		Failed:  len(failures),
		Errors:  failures,
	}
	if len(failures) > 0 {
		c.JSON(http.StatusPartialContent, response)
		return
	}
	c.JSON(http.StatusOK, response)
}
