package allocation

import "github.com/Kamel-system-sa/portal-poc-sub003/internal/model"

// IDIndex 支持按 ID 查找的目录
type IDIndex interface {
	Lookup(id string) (model.AccommodationRecord, bool)
}

// Backfill 为缺少或失效 ID 的分配重新解析住宿名称，原地写回 ID，返回修复条数
//
// 显示名称保持原样；重新解析失败时保留原 ID（可能仍然失效）。
func Backfill(assignments []model.ResolvedAssignment, catalog Catalog) int {
	if len(assignments) == 0 || catalog == nil {
		return 0
	}

	known := idChecker(catalog)

	repaired := 0
	for i := range assignments {
		a := &assignments[i]
		if normalizeName(a.AccommodationName) == "" {
			continue
		}
		if a.AccommodationID != "" {
			if known(a.AccommodationID) {
				continue
			}
		}

		record, ok := Resolve(a.AccommodationName, catalog)
		if !ok || record.ID == "" || record.ID == a.AccommodationID {
			continue
		}
		a.AccommodationID = record.ID
		repaired++
	}
	return repaired
}

// idChecker 判断 ID 是否仍在目录中；目录自带索引时直接使用，否则临时建集合
func idChecker(catalog Catalog) func(id string) bool {
	if idx, ok := catalog.(IDIndex); ok {
		return func(id string) bool {
			_, found := idx.Lookup(id)
			return found
		}
	}

	known := make(map[string]struct{}, len(catalog.Records()))
	for _, r := range catalog.Records() {
		known[r.ID] = struct{}{}
	}
	return func(id string) bool {
		_, found := known[id]
		return found
	}
}
