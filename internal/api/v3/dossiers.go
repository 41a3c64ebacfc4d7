package v3

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HandleListDossiers 查询预订档案列表
// GET /api/dossiers?limit=200
func (h *Handler) HandleListDossiers(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit 参数无效"})
			return
		}
		limit = n
	}

	dossiers, err := h.store.ListDossiers(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": len(dossiers),
		"items": dossiers,
	})
}

// HandleGetDossier 按预订编号查询单个档案
// GET /api/dossiers/:reference
func (h *Handler) HandleGetDossier(c *gin.Context) {
	reference := c.Param("reference")

	dossier, err := h.store.GetDossier(reference)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if dossier == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "档案不存在"})
		return
	}

	c.JSON(http.StatusOK, dossier)
}
