package v3

import (
	"github.com/gin-gonic/gin"

	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/importer"
	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/store"
)

// Handler v3 API 处理器
type Handler struct {
	store       *store.Store
	coordinator *importer.Coordinator
}

// NewHandler 创建 API 处理器
func NewHandler(st *store.Store, coord *importer.Coordinator) *Handler {
	return &Handler{store: st, coordinator: coord}
}

// RegisterRoutes 注册 v3 路由
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/import", h.HandleImport)
	api.GET("/dossiers", h.HandleListDossiers)
	api.GET("/dossiers/:reference", h.HandleGetDossier)
	api.GET("/hotels", h.HandleListHotels)
	api.GET("/status", h.HandleStatus)
}
