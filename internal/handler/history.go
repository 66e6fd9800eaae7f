package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/tickerlens/internal/middleware"
	"github.com/yourusername/tickerlens/internal/model"
)

type HistoryHandler struct {
	store HistoryStore
}

func NewHistoryHandler(store HistoryStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// List handles GET /api/history?limit=20
func (h *HistoryHandler) List(c *gin.Context) {
	uid := middleware.GetFirebaseUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	searches, err := h.store.Recent(c.Request.Context(), uid, limit)
	if err != nil {
		log.Error().Err(err).Str("uid", uid).Msg("Failed to list search history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}
	if searches == nil {
		searches = []model.SearchRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"searches": searches})
}

// Clear handles DELETE /api/history
func (h *HistoryHandler) Clear(c *gin.Context) {
	uid := middleware.GetFirebaseUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	n, err := h.store.DeleteForUser(c.Request.Context(), uid)
	if err != nil {
		log.Error().Err(err).Str("uid", uid).Msg("Failed to clear search history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
