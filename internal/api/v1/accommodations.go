package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/allocation"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

// ListAccommodations 查询住宿目录
// GET /api/accommodations?category=hotel&destination=makkah
func (h *Handler) ListAccommodations(c *gin.Context) {
	cat, err := h.loadCatalog()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取住宿目录失败"})
		return
	}

	records := cat.Records()
	if dest := strings.TrimSpace(c.Query("destination")); dest != "" {
		records = allocation.MatchDestination(dest, cat)
	}

	category := strings.TrimSpace(c.Query("category"))
	items := make([]model.AccommodationRecord, 0, len(records))
	for _, r := range records {
		if category != "" && string(r.Category) != category {
			continue
		}
		items = append(items, r)
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}
