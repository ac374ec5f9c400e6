package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/store"
)

// ListImports 最近的导入记录
// GET /api/imports?limit=20
func (h *Handler) ListImports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	logs, err := h.store.ListImportLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询导入记录失败"})
		return
	}
	if logs == nil {
		logs = []store.ImportLog{}
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}

// ListImportSheets 某次导入的 Sheet 识别与导入明细
// GET /api/imports/:id/sheets
func (h *Handler) ListImportSheets(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的导入记录 ID"})
		return
	}

	sheets, err := h.store.ListSheetMeta(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询 Sheet 明细失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": sheets})
}
