package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kline_backend/internal/api"
)

// Health answers liveness probes.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.Success(gin.H{"status": "ok"}))
}
