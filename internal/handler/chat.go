package handler

import (
	"net/http"

	"estatecore/internal/model"
	"estatecore/internal/orchestrator"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles chat-related HTTP requests.
type ChatHandler struct {
	orch *orchestrator.Orchestrator
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(orch *orchestrator.Orchestrator) *ChatHandler {
	return &ChatHandler{orch: orch}
}

// Chat handles POST /api/v1/chat. Source-level failures never produce an
// error response here; the worst case is an answer built from fewer or no
// context items.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	response, err := h.orch.Respond(c.Request.Context(), &req)
	if err != nil {
		// only a cancelled caller context reaches this branch
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Chat failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}
