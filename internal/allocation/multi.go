package allocation

import (
	"regexp"
	"strings"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

var (
	segmentDelimiters = regexp.MustCompile(`[,|;]`)
	// <名称><: 或 |><人数>
	namedCountPattern = regexp.MustCompile(`^(.+?)\s*[:|]\s*(.+)$`)
)

// ParseMultiple 拆分 "名称: 人数" 形式的复合字段
//
// 无法解析的名称或人数为 0 的片段直接丢弃。
func ParseMultiple(compositeText string, catalog Catalog, defaultCount int) []model.ResolvedAssignment {
	assignments, _ := parseMultiple(compositeText, catalog, defaultCount)
	return assignments
}

// parseMultiple 同 ParseMultiple，额外返回被丢弃的片段
func parseMultiple(compositeText string, catalog Catalog, defaultCount int) ([]model.ResolvedAssignment, []string) {
	var (
		out     []model.ResolvedAssignment
		dropped []string
	)

	for _, segment := range segmentDelimiters.Split(compositeText, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		name := segment
		count := defaultCount
		if m := namedCountPattern.FindStringSubmatch(segment); m != nil {
			name = m[1]
			count = ParseCount(m[2])
		}

		record, ok := Resolve(name, catalog)
		if !ok || count <= 0 {
			dropped = append(dropped, segment)
			continue
		}

		out = append(out, model.ResolvedAssignment{
			AccommodationID:   record.ID,
			AccommodationName: record.Name,
			PilgrimsAssigned:  count,
		})
	}

	return out, dropped
}
