package allocation

import (
	"strings"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

// Options 分配选项
type Options struct {
	// DisableFallback 关闭按目的地平均分配
	DisableFallback bool
	// DefaultDestination 行内没有目的地时使用
	DefaultDestination string
}

// Result 单行分配结果
type Result struct {
	Row         NormalizedRow
	Assignments []model.ResolvedAssignment
	Source      model.AllocationSource
	Dropped     []string // 未能解析而被丢弃的片段
}

// Allocate 对一行导入数据执行：字段规范化 → 复合字段拆分 → 无结果时按目的地回退分配
func Allocate(row model.RawInputRecord, catalog Catalog, opts Options) Result {
	n := Normalize(row)
	res := Result{
		Row:         n,
		Assignments: []model.ResolvedAssignment{},
		Source:      model.AllocationNone,
	}

	total := derefInt(n.TotalPilgrims)

	if multi := deref(n.MultiField); strings.TrimSpace(multi) != "" {
		defaultCount := derefInt(n.PilgrimsAssigned)
		parsed, dropped := parseMultiple(multi, catalog, defaultCount)
		res.Assignments = append(res.Assignments, parsed...)
		res.Dropped = append(res.Dropped, dropped...)
	}

	if name := strings.TrimSpace(deref(n.AccommodationName)); name != "" {
		if a, ok := resolveSingle(name, n, total, catalog); ok {
			res.Assignments = append(res.Assignments, a)
		} else {
			res.Dropped = append(res.Dropped, name)
		}
	}

	if len(res.Assignments) > 0 {
		res.Source = model.AllocationExplicit
		return res
	}

	if opts.DisableFallback || total <= 0 {
		return res
	}

	destination := deref(n.Destination)
	if strings.TrimSpace(destination) == "" {
		destination = opts.DefaultDestination
	}
	if fallback := DistributeFallback(destination, total, catalog); len(fallback) > 0 {
		res.Assignments = fallback
		res.Source = model.AllocationFallback
	}
	return res
}

// resolveSingle 单列住宿名按整体解析，最多产生一条分配；人数取 pilgrimsAssigned，缺省为团组总人数
func resolveSingle(name string, n NormalizedRow, total int, catalog Catalog) (model.ResolvedAssignment, bool) {
	count := total
	if n.PilgrimsAssigned != nil {
		count = *n.PilgrimsAssigned
	}
	record, ok := Resolve(name, catalog)
	if !ok || count <= 0 {
		return model.ResolvedAssignment{}, false
	}
	return model.ResolvedAssignment{
		AccommodationID:   record.ID,
		AccommodationName: record.Name,
		PilgrimsAssigned:  count,
		ContractNumber:    strings.TrimSpace(deref(n.ContractNumber)),
	}, true
}

// AllocateAll 逐行分配
func AllocateAll(rows []model.RawInputRecord, catalog Catalog, opts Options) []Result {
	out := make([]Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, Allocate(row, catalog, opts))
	}
	return out
}
