package model

// AccommodationCategory 住宿来源分类
type AccommodationCategory string

const (
	CategoryAccommodation AccommodationCategory = "accommodation" // 通用住宿
	CategoryHotel         AccommodationCategory = "hotel"         // 酒店
	CategoryBuilding      AccommodationCategory = "building"      // 楼宇
	CategoryMinaTent      AccommodationCategory = "mina_tent"     // 米纳帐篷
	CategoryArafatTent    AccommodationCategory = "arafat_tent"   // 阿拉法特帐篷
)

// CatalogOrder 目录拼接顺序，名称匹配时靠前的来源优先
var CatalogOrder = []AccommodationCategory{
	CategoryAccommodation,
	CategoryHotel,
	CategoryBuilding,
	CategoryMinaTent,
	CategoryArafatTent,
}

// AccommodationRecord 住宿目录条目
type AccommodationRecord struct {
	ID       string                `json:"id" yaml:"id"`
	Name     string                `json:"name" yaml:"name"`
	Location string                `json:"location" yaml:"location"` // 城市/场地标签，如 Makkah、Mina
	Category AccommodationCategory `json:"category" yaml:"-"`
	Capacity int                   `json:"capacity,omitempty" yaml:"capacity"`
}

// RawInputRecord 导入的一行原始数据，键名不固定
type RawInputRecord map[string]any

// ResolvedAssignment 住宿分配结果
type ResolvedAssignment struct {
	AccommodationID   string `json:"accommodationId"`   // 未解析时为空
	AccommodationName string `json:"accommodationName"` // 解析成功为目录名称，否则为原文
	PilgrimsAssigned  int    `json:"pilgrimsAssigned"`
	ContractNumber    string `json:"contractNumber,omitempty"`
}
