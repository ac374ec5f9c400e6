package catalog

import (
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

// Sources 各住宿目录来源
type Sources struct {
	Accommodations []model.AccommodationRecord `yaml:"accommodations,omitempty"`
	Hotels         []model.AccommodationRecord `yaml:"hotels,omitempty"`
	Buildings      []model.AccommodationRecord `yaml:"buildings,omitempty"`
	MinaTents      []model.AccommodationRecord `yaml:"minaTents,omitempty"`
	ArafatTents    []model.AccommodationRecord `yaml:"arafatTents,omitempty"`
}

// Catalog 合并后的只读住宿目录
//
// 顺序固定为 通用住宿 → 酒店 → 楼宇 → 米纳帐篷 → 阿拉法特帐篷，名称匹配的平局按此顺序决定，
// 因此不得重新排序。
type Catalog struct {
	records []model.AccommodationRecord
	byID    map[string]int
}

// New 按固定顺序拼接各来源
func New(src Sources) *Catalog {
	parts := []struct {
		category model.AccommodationCategory
		records  []model.AccommodationRecord
	}{
		{model.CategoryAccommodation, src.Accommodations},
		{model.CategoryHotel, src.Hotels},
		{model.CategoryBuilding, src.Buildings},
		{model.CategoryMinaTent, src.MinaTents},
		{model.CategoryArafatTent, src.ArafatTents},
	}

	var records []model.AccommodationRecord
	for _, p := range parts {
		for _, r := range p.records {
			r.Category = p.category
			records = append(records, r)
		}
	}
	return FromRecords(records)
}

// FromRecords 用已排好序的记录构建目录（例如从数据库按 seq 读出）
func FromRecords(records []model.AccommodationRecord) *Catalog {
	c := &Catalog{
		records: make([]model.AccommodationRecord, len(records)),
		byID:    make(map[string]int, len(records)),
	}
	copy(c.records, records)
	for i, r := range c.records {
		if r.ID == "" {
			continue
		}
		// 重复 ID 以首条为准
		if _, ok := c.byID[r.ID]; !ok {
			c.byID[r.ID] = i
		}
	}
	return c
}

// Records 返回目录记录（调用方不得修改）
func (c *Catalog) Records() []model.AccommodationRecord {
	if c == nil {
		return nil
	}
	return c.records
}

// Lookup 按 ID 查找
func (c *Catalog) Lookup(id string) (model.AccommodationRecord, bool) {
	if c == nil {
		return model.AccommodationRecord{}, false
	}
	idx, ok := c.byID[id]
	if !ok {
		return model.AccommodationRecord{}, false
	}
	return c.records[idx], true
}

// Len 目录条目数
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Split 按分类拆回各来源，用于导出/展示
func (c *Catalog) Split() Sources {
	var src Sources
	for _, r := range c.Records() {
		switch r.Category {
		case model.CategoryHotel:
			src.Hotels = append(src.Hotels, r)
		case model.CategoryBuilding:
			src.Buildings = append(src.Buildings, r)
		case model.CategoryMinaTent:
			src.MinaTents = append(src.MinaTents, r)
		case model.CategoryArafatTent:
			src.ArafatTents = append(src.ArafatTents, r)
		default:
			src.Accommodations = append(src.Accommodations, r)
		}
	}
	return src
}
