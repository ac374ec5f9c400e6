package v1

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/exporter"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

// ExportRequest 导出请求
type ExportRequest struct {
	Status         string `json:"status"`
	Movement       string `json:"movement"`
	IncludeCatalog bool   `json:"includeCatalog"`
	FileName       string `json:"fileName"`
}

// Export 导出团组分配 Excel
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	var req ExportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
			return
		}
	}

	opts := exporter.ExportOptions{IncludeCatalog: req.IncludeCatalog}
	if req.Status != "" {
		status := model.GroupStatus(req.Status)
		opts.Status = &status
	}
	if req.Movement != "" {
		movement := model.Movement(req.Movement)
		opts.Movement = &movement
	}

	file, err := exporter.NewExporter(h.store).Export(opts, nil)
	if err != nil {
		zap.L().Error("导出失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败"})
		return
	}
	defer file.Close()

	season, _ := h.store.GetSeason()
	fileName := exporter.FileName(req.FileName, season)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", fileName, url.PathEscape(fileName)))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "写入文件失败"})
		return
	}
}
