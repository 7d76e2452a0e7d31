package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/evan-burke/nscheck/interfaces"
	"github.com/evan-burke/nscheck/internal/models"
	"github.com/evan-burke/nscheck/internal/tracing"
	"github.com/evan-burke/nscheck/services"
)

const defaultHistoryCount = 20

type HistoryHandler struct {
	checkLogService interfaces.CheckLogService
}

func NewHistoryHandler(s *services.Services) *HistoryHandler {
	return &HistoryHandler{
		checkLogService: s.CheckLogService,
	}
}

type HistoryResponse struct {
	Entries []models.CheckLogEntry `json:"entries"`
}

// Recent returns the newest check log entries from the in-memory ring.
func (h *HistoryHandler) Recent() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "HistoryHandler.Recent")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		n := defaultHistoryCount
		if raw := c.Query("n"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
				return
			}
			n = parsed
		}

		c.JSON(http.StatusOK, HistoryResponse{Entries: h.checkLogService.Recent(n)})
	}
}
