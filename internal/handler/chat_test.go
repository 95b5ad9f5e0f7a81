package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"estatecore/internal/analyzer"
	"estatecore/internal/fusion"
	"estatecore/internal/model"
	"estatecore/internal/orchestrator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := fusion.NewEngine(1.0, 0.9, 0.8, fusion.BudgetItems)
	serializer := fusion.NewSerializer(10000)
	// no adapters and no generator: the pipeline still answers, degraded
	orch := orchestrator.New(analyzer.New(), nil, engine, serializer, nil, nil, zap.NewNop(), time.Second, 10, 20)

	router := gin.New()
	router.POST("/api/v1/chat", NewChatHandler(orch).Chat)
	return router
}

func TestChat_OK(t *testing.T) {
	router := testRouter()

	body := `{"message":"2-bedroom apartment in Dubai Marina under 3 million AED"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"intent":"`+string(model.IntentPropertySearch)+`"`)
	assert.Contains(t, w.Body.String(), `"sources_used":[]`)
}

func TestChat_MissingMessage(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat_MalformedBody(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`not json`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
