package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/catalog"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/importer"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	store       *store.Store
	coordinator *importer.Coordinator
	defaults    importer.ImportOptions
}

// NewHandler 创建 V1 API 处理器；defaults 提供导入/分配的默认选项
func NewHandler(store *store.Store, defaults importer.ImportOptions) *Handler {
	return &Handler{
		store:       store,
		coordinator: importer.NewCoordinator(store),
		defaults:    defaults,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 住宿目录
	router.GET("/accommodations", h.ListAccommodations)

	// 数据导入 / 分配试算
	router.POST("/import", h.Import)
	router.GET("/imports", h.ListImports)
	router.GET("/imports/:id/sheets", h.ListImportSheets)
	router.POST("/allocate", h.Allocate)

	// 团组确认与编辑
	router.GET("/groups", h.ListGroups)
	router.POST("/groups/backfill", h.BackfillGroups)
	router.GET("/groups/:id", h.GetGroup)
	router.PUT("/groups/:id/assignments", h.UpdateAssignments)
	router.POST("/groups/:id/confirm", h.ConfirmGroup)

	// 数据导出
	router.POST("/export", h.Export)
}

// loadCatalog 每次请求从数据库读取目录，保证使用最新数据
func (h *Handler) loadCatalog() (*catalog.Catalog, error) {
	records, err := h.store.ListAccommodations()
	if err != nil {
		return nil, err
	}
	return catalog.FromRecords(records), nil
}
