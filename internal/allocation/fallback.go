package allocation

import (
	"strings"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

// Destination 逻辑目的地
type Destination string

const (
	DestinationMakkah  Destination = "makkah"
	DestinationMadinah Destination = "madinah"
	DestinationMina    Destination = "mina"
	DestinationArafat  Destination = "arafat"
)

// destinationAliases 目的地别名，匹配目录的 location 标签
var destinationAliases = map[Destination][]string{
	DestinationMakkah:  {"makkah", "mecca", "makka", "مكة"},
	DestinationMadinah: {"madinah", "medina", "madina", "المدينة"},
	DestinationMina:    {"mina", "منى"},
	DestinationArafat:  {"arafat", "arafah", "عرفات"},
}

var destinationOrder = []Destination{DestinationMakkah, DestinationMadinah, DestinationMina, DestinationArafat}

// ParseDestination 将自由文本的目的地映射为逻辑目的地
func ParseDestination(text string) (Destination, bool) {
	s := normalizeName(text)
	if s == "" {
		return "", false
	}
	for _, d := range destinationOrder {
		for _, alias := range destinationAliases[d] {
			if strings.Contains(s, alias) {
				return d, true
			}
		}
	}
	return "", false
}

// aliasesFor 返回目的地对应的别名；未知目的地按原文匹配
func aliasesFor(destination string) []string {
	if d, ok := ParseDestination(destination); ok {
		return destinationAliases[d]
	}
	if s := normalizeName(destination); s != "" {
		return []string{s}
	}
	return nil
}

// MatchDestination 返回 location 标签与目的地匹配的目录条目，保持目录顺序
func MatchDestination(destination string, catalog Catalog) []model.AccommodationRecord {
	aliases := aliasesFor(destination)
	if len(aliases) == 0 || catalog == nil {
		return nil
	}

	var matched []model.AccommodationRecord
	for _, r := range catalog.Records() {
		location := normalizeName(r.Location)
		for _, alias := range aliases {
			if strings.Contains(location, alias) {
				matched = append(matched, r)
				break
			}
		}
	}
	return matched
}

// DistributeFallback 无明确分配时，将总人数平均分到目的地的所有住宿
//
// 余数全部给第一条匹配记录；分到 0 人的记录不输出，合计始终等于 totalPilgrims。
func DistributeFallback(destination string, totalPilgrims int, catalog Catalog) []model.ResolvedAssignment {
	if totalPilgrims <= 0 {
		return []model.ResolvedAssignment{}
	}

	matched := MatchDestination(destination, catalog)
	if len(matched) == 0 {
		return []model.ResolvedAssignment{}
	}

	base := totalPilgrims / len(matched)
	remainder := totalPilgrims % len(matched)

	out := make([]model.ResolvedAssignment, 0, len(matched))
	for i, r := range matched {
		count := base
		if i == 0 {
			count += remainder
		}
		if count <= 0 {
			continue
		}
		out = append(out, model.ResolvedAssignment{
			AccommodationID:   r.ID,
			AccommodationName: r.Name,
			PilgrimsAssigned:  count,
		})
	}
	return out
}
