package gateway

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spacesedan/sentiment-analyzer/internal/models"
)

// NewRouter wires the web endpoints. Each handler body is also reachable
// through the Lambda entrypoint; gin only does transport here.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestMetrics())

	r.POST("/sentiment", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:  "failed to read request body",
				Status: models.StatusError,
			})
			return
		}
		status, payload := h.AnalyzeJSON(c.Request.Context(), body)
		c.JSON(status, payload)
	})

	r.POST("/sentiment/batch", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:  "failed to read request body",
				Status: models.StatusError,
			})
			return
		}
		status, payload := h.BatchJSON(c.Request.Context(), body)
		c.JSON(status, payload)
	})

	r.GET("/health", func(c *gin.Context) {
		status, payload := h.HealthJSON()
		c.JSON(status, payload)
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
