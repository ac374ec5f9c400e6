package model

import "time"

// Movement 团组动向
type Movement string

const (
	MovementArrival   Movement = "arrival"
	MovementDeparture Movement = "departure"
)

// GroupStatus 团组状态
type GroupStatus string

const (
	GroupStatusDraft     GroupStatus = "draft"     // 导入后待确认
	GroupStatusConfirmed GroupStatus = "confirmed" // 已确认
)

// AllocationSource 分配来源
type AllocationSource string

const (
	AllocationExplicit AllocationSource = "explicit" // 表格中明确给出
	AllocationFallback AllocationSource = "fallback" // 按目的地平均分配
	AllocationNone     AllocationSource = "none"
)

// PilgrimGroup 到达/离开团组
type PilgrimGroup struct {
	ID            string               `json:"id"`
	GroupName     string               `json:"groupName"`
	OrganizerName string               `json:"organizerName"`
	Destination   string               `json:"destination"`
	Movement      Movement             `json:"movement"`
	TotalPilgrims int                  `json:"totalPilgrims"`
	TravelDate    string               `json:"travelDate"`
	FlightNumber  string               `json:"flightNumber"`
	Status        GroupStatus          `json:"status"`
	Source        AllocationSource     `json:"allocationSource"`
	Assignments   []ResolvedAssignment `json:"assignments"`
	RowNo         int                  `json:"rowNo"`
	SourceSheet   string               `json:"sourceSheet"`
	SourceFile    string               `json:"sourceFile"`
	CreatedAt     time.Time            `json:"createdAt"`
	ConfirmedAt   *time.Time           `json:"confirmedAt,omitempty"`
}

// AssignedPilgrims 已分配人数合计
func (g *PilgrimGroup) AssignedPilgrims() int {
	total := 0
	for _, a := range g.Assignments {
		total += a.PilgrimsAssigned
	}
	return total
}
