package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/allocation"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// ListGroups 查询团组列表
// GET /api/groups?status=draft&movement=arrival&destination=makkah&keyword=xx&page=1&pageSize=50
func (h *Handler) ListGroups(c *gin.Context) {
	opts := store.GroupQueryOptions{
		Keyword: strings.TrimSpace(c.Query("keyword")),
	}
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		status := model.GroupStatus(v)
		opts.Status = &status
	}
	if v := strings.TrimSpace(c.Query("movement")); v != "" {
		movement := model.Movement(v)
		opts.Movement = &movement
	}
	if v := strings.TrimSpace(c.Query("destination")); v != "" {
		opts.Destination = &v
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total, err := h.store.CountGroups(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "统计团组失败"})
		return
	}

	opts.Limit = pageSize
	opts.Offset = (page - 1) * pageSize
	groups, err := h.store.ListGroups(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询团组失败"})
		return
	}
	if groups == nil {
		groups = []*model.PilgrimGroup{}
	}
	for _, g := range groups {
		ensureAssignments(g)
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    groups,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// GetGroup 获取团组详情；读取时回填缺失的住宿 ID 并保存
// GET /api/groups/:id
func (h *Handler) GetGroup(c *gin.Context) {
	g, ok := h.loadGroup(c)
	if !ok {
		return
	}

	cat, err := h.loadCatalog()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取住宿目录失败"})
		return
	}

	if n := allocation.Backfill(g.Assignments, cat); n > 0 {
		if err := h.store.ReplaceAssignments(g.ID, g.Assignments); err != nil {
			// 回填结果仍然返回，下次读取会再次尝试保存
			zap.L().Warn("保存回填结果失败", zap.String("group", g.ID), zap.Error(err))
		}
	}

	ensureAssignments(g)
	c.JSON(http.StatusOK, g)
}

// UpdateAssignmentsRequest 编辑分配请求
type UpdateAssignmentsRequest struct {
	Assignments []model.ResolvedAssignment `json:"assignments"`
}

// UpdateAssignments 覆盖团组分配（人数为 0 的条目丢弃）
// PUT /api/groups/:id/assignments
func (h *Handler) UpdateAssignments(c *gin.Context) {
	var req UpdateAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	assignments := make([]model.ResolvedAssignment, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		if a.PilgrimsAssigned < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "分配人数不能为负数"})
			return
		}
		if a.PilgrimsAssigned == 0 {
			continue
		}
		a.AccommodationName = strings.TrimSpace(a.AccommodationName)
		a.ContractNumber = strings.TrimSpace(a.ContractNumber)
		assignments = append(assignments, a)
	}

	g, ok := h.loadGroup(c)
	if !ok {
		return
	}
	if g.Status == model.GroupStatusConfirmed {
		c.JSON(http.StatusConflict, gin.H{"error": "团组已确认，不能修改"})
		return
	}

	cat, err := h.loadCatalog()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取住宿目录失败"})
		return
	}
	allocation.Backfill(assignments, cat)

	if err := h.store.ReplaceAssignments(g.ID, assignments); err != nil {
		if errors.Is(err, store.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "团组不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存分配失败"})
		return
	}

	g.Assignments = assignments
	c.JSON(http.StatusOK, g)
}

// ConfirmGroup 确认团组分配
// POST /api/groups/:id/confirm
func (h *Handler) ConfirmGroup(c *gin.Context) {
	g, ok := h.loadGroup(c)
	if !ok {
		return
	}

	cat, err := h.loadCatalog()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取住宿目录失败"})
		return
	}
	if n := allocation.Backfill(g.Assignments, cat); n > 0 {
		if err := h.store.ReplaceAssignments(g.ID, g.Assignments); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "保存分配失败"})
			return
		}
	}

	now := time.Now()
	if err := h.store.ConfirmGroup(g.ID, now); err != nil {
		if errors.Is(err, store.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "团组不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "确认团组失败"})
		return
	}

	g.Status = model.GroupStatusConfirmed
	g.ConfirmedAt = &now
	ensureAssignments(g)
	c.JSON(http.StatusOK, g)
}

// BackfillGroups 对所有待确认团组执行住宿 ID 回填
// POST /api/groups/backfill
func (h *Handler) BackfillGroups(c *gin.Context) {
	repaired, err := h.coordinator.BackfillDraftAssignments()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "回填失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"repaired": repaired})
}

func (h *Handler) loadGroup(c *gin.Context) (*model.PilgrimGroup, bool) {
	g, err := h.store.GetGroup(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "团组不存在"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取团组失败"})
		return nil, false
	}
	return g, true
}

func ensureAssignments(g *model.PilgrimGroup) {
	if g.Assignments == nil {
		g.Assignments = []model.ResolvedAssignment{}
	}
}
