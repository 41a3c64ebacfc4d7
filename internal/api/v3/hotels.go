package v3

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleListHotels 查询酒店列表
// GET /api/hotels
func (h *Handler) HandleListHotels(c *gin.Context) {
	hotels, err := h.store.ListHotels()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": len(hotels),
		"items": hotels,
	})
}
