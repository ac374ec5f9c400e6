package allocation

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

// Catalog 住宿目录，Records 的顺序即匹配优先级
type Catalog interface {
	Records() []model.AccommodationRecord
}

// StaticCatalog 以切片表示的目录
type StaticCatalog []model.AccommodationRecord

// Records 实现 Catalog
func (s StaticCatalog) Records() []model.AccommodationRecord {
	return s
}

// normalizeName 去首尾空白并小写
func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// Resolve 将自由文本的住宿名称映射到目录条目
//
// 先精确匹配，再做双向包含匹配；两轮都按目录顺序取第一条。
func Resolve(freeText string, catalog Catalog) (model.AccommodationRecord, bool) {
	needle := normalizeName(freeText)
	if needle == "" || catalog == nil {
		return model.AccommodationRecord{}, false
	}

	records := catalog.Records()
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = normalizeName(r.Name)
		if names[i] == needle {
			return r, true
		}
	}

	for i, r := range records {
		name := names[i]
		if name == "" {
			continue
		}
		if strings.Contains(needle, name) || strings.Contains(name, needle) {
			return r, true
		}
	}

	return model.AccommodationRecord{}, false
}
