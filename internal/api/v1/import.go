package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/allocation"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

// Import 导入 Excel 团组数据 (SSE 流式响应)
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的表单数据"})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	uploadedFile := files[0]

	// 保存到临时目录
	tempFilePath := filepath.Join(os.TempDir(), fmt.Sprintf("portal_import_%d_%s", time.Now().UnixNano(), filepath.Base(uploadedFile.Filename)))
	if err := c.SaveUploadedFile(uploadedFile, tempFilePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}
	defer os.Remove(tempFilePath)

	opts := h.defaults
	opts.FilePath = tempFilePath
	opts.SourceName = uploadedFile.Filename
	if v, ok := c.GetPostForm("clearExisting"); ok {
		opts.ClearExisting = v == "true"
	}
	if v, ok := c.GetPostForm("defaultDestination"); ok {
		opts.DefaultDestination = v
	}
	if v, ok := c.GetPostForm("disableFallback"); ok {
		opts.DisableFallback = v == "true"
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	for event := range h.coordinator.Import(opts) {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// AllocateRequest 分配试算请求
type AllocateRequest struct {
	Rows               []model.RawInputRecord `json:"rows"`
	DefaultDestination *string                `json:"defaultDestination"`
	DisableFallback    *bool                  `json:"disableFallback"`
}

// AllocateItem 单行试算结果
type AllocateItem struct {
	Assignments []model.ResolvedAssignment `json:"assignments"`
	Source      model.AllocationSource     `json:"source"`
	Total       int                        `json:"totalPilgrims"`
}

// Allocate 对 JSON 行执行住宿解析与分配，不写库
// POST /api/allocate
func (h *Handler) Allocate(c *gin.Context) {
	var req AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	cat, err := h.loadCatalog()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取住宿目录失败"})
		return
	}

	opts := allocation.Options{
		DefaultDestination: h.defaults.DefaultDestination,
		DisableFallback:    h.defaults.DisableFallback,
	}
	if req.DefaultDestination != nil {
		opts.DefaultDestination = *req.DefaultDestination
	}
	if req.DisableFallback != nil {
		opts.DisableFallback = *req.DisableFallback
	}

	items := make([]AllocateItem, 0, len(req.Rows))
	for _, res := range allocation.AllocateAll(req.Rows, cat, opts) {
		total := 0
		if res.Row.TotalPilgrims != nil {
			total = *res.Row.TotalPilgrims
		}
		items = append(items, AllocateItem{
			Assignments: res.Assignments,
			Source:      res.Source,
			Total:       total,
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
