package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized     bool   `json:"initialized"`     // 是否已有团组
	Season          int    `json:"season"`          // 当前朝觐季
	TotalGroups     int    `json:"totalGroups"`     // 团组总数
	DraftGroups     int    `json:"draftGroups"`     // 待确认
	ConfirmedGroups int    `json:"confirmedGroups"` // 已确认
	Accommodations  int    `json:"accommodations"`  // 住宿目录条目数
	LastImportTime  string `json:"lastImportTime"`  // 最后导入时间
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	total, err := h.store.CountGroups(store.GroupQueryOptions{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "统计团组失败"})
		return
	}

	draft := model.GroupStatusDraft
	draftCount, err := h.store.CountGroups(store.GroupQueryOptions{Status: &draft})
	if err != nil {
		draftCount = 0
	}

	accommodations, err := h.store.CountAccommodations()
	if err != nil {
		accommodations = 0
	}

	season, err := h.store.GetSeason()
	if err != nil {
		season = 0
	}

	lastImport := ""
	if t := h.store.LastImportTime(); !t.IsZero() {
		lastImport = t.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, StatusResponse{
		Initialized:     total > 0,
		Season:          season,
		TotalGroups:     total,
		DraftGroups:     draftCount,
		ConfirmedGroups: total - draftCount,
		Accommodations:  accommodations,
		LastImportTime:  lastImport,
	})
}
