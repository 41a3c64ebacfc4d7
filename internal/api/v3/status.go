package v3

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized    bool   `json:"initialized"`    // 是否已初始化（有数据）
	DossierCount   int    `json:"dossierCount"`   // 预订档案总数
	HotelCount     int    `json:"hotelCount"`     // 酒店总数
	LastImportTime string `json:"lastImportTime"` // 最后导入时间
}

// HandleStatus 获取系统状态
// GET /api/status
func (h *Handler) HandleStatus(c *gin.Context) {
	dossierCount, err := h.store.CountDossiers()
	if err != nil {
		dossierCount = 0
	}
	hotelCount, err := h.store.CountHotels()
	if err != nil {
		hotelCount = 0
	}
	lastImport, err := h.store.LastImportTime()
	if err != nil {
		lastImport = ""
	}

	c.JSON(http.StatusOK, StatusResponse{
		Initialized:    dossierCount > 0,
		DossierCount:   dossierCount,
		HotelCount:     hotelCount,
		LastImportTime: lastImport,
	})
}
