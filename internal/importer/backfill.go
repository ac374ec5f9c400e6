package importer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/allocation"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/store"
)

// BackfillDraftAssignments 对所有待确认团组重新解析缺失/失效的住宿 ID 并保存，返回修复条数
//
// 住宿目录更新后调用，已确认的团组不动。
func (c *Coordinator) BackfillDraftAssignments() (int, error) {
	cat, err := c.loadCatalog()
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}

	draft := model.GroupStatusDraft
	groups, err := c.store.ListGroups(store.GroupQueryOptions{Status: &draft})
	if err != nil {
		return 0, fmt.Errorf("list draft groups: %w", err)
	}

	total := 0
	for _, g := range groups {
		n := allocation.Backfill(g.Assignments, cat)
		if n == 0 {
			continue
		}
		if err := c.store.ReplaceAssignments(g.ID, g.Assignments); err != nil {
			return total, fmt.Errorf("save assignments for %s: %w", g.ID, err)
		}
		total += n
	}

	if total > 0 {
		zap.L().Info("回填住宿 ID", zap.Int("repaired", total), zap.Int("groups", len(groups)))
	}
	return total, nil
}
