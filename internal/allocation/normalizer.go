package allocation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

// 各逻辑字段的别名，按优先级排列
var (
	accommodationNameKeys = []string{"accommodationName", "accommodation_name", "accommodation", "hotel", "building", "tent"}
	pilgrimsAssignedKeys  = []string{"pilgrimsAssigned", "pilgrims_assigned", "assignedPilgrims", "assigned_pilgrims", "assigned"}
	contractNumberKeys    = []string{"contractNumber", "contract_number", "contractNo", "contract_no", "contract"}
	multiFieldKeys        = []string{"accommodations", "accommodationList", "accommodation_list", "hotels", "buildings", "tents"}

	destinationKeys   = []string{"destination", "arrivalCity", "arrival_city", "city", "location"}
	totalPilgrimsKeys = []string{"totalPilgrims", "total_pilgrims", "pilgrimsCount", "pilgrims_count", "pilgrims", "count"}
	groupNameKeys     = []string{"groupName", "group_name", "group", "groupNumber", "group_number"}
	organizerKeys     = []string{"organizerName", "organizer_name", "organizer", "company"}
	travelDateKeys    = []string{"arrivalDate", "arrival_date", "departureDate", "departure_date", "date"}
	flightNumberKeys  = []string{"flightNumber", "flight_number", "flightNo", "flight_no", "flight"}
	movementKeys      = []string{"movement", "type", "direction"}
)

// NormalizedRow 规范化后的行，缺失字段为 nil
type NormalizedRow struct {
	AccommodationName *string
	PilgrimsAssigned  *int
	ContractNumber    *string
	MultiField        *string

	Destination   *string
	TotalPilgrims *int
	GroupName     *string
	Organizer     *string
	TravelDate    *string
	FlightNumber  *string
	Movement      *string
}

// Normalize 从任意键名的行中提取逻辑字段
func Normalize(row model.RawInputRecord) NormalizedRow {
	return NormalizedRow{
		AccommodationName: pickString(row, accommodationNameKeys),
		PilgrimsAssigned:  pickCount(row, pilgrimsAssignedKeys),
		ContractNumber:    pickString(row, contractNumberKeys),
		MultiField:        pickString(row, multiFieldKeys),

		Destination:   pickString(row, destinationKeys),
		TotalPilgrims: pickCount(row, totalPilgrimsKeys),
		GroupName:     pickString(row, groupNameKeys),
		Organizer:     pickString(row, organizerKeys),
		TravelDate:    pickString(row, travelDateKeys),
		FlightNumber:  pickString(row, flightNumberKeys),
		Movement:      pickString(row, movementKeys),
	}
}

// pick 返回第一个存在且非 nil 的别名值
func pick(row model.RawInputRecord, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func pickString(row model.RawInputRecord, keys []string) *string {
	v, ok := pick(row, keys)
	if !ok {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case fmt.Stringer:
		s = t.String()
	default:
		s = fmt.Sprint(t)
	}
	return &s
}

func pickCount(row model.RawInputRecord, keys []string) *int {
	v, ok := pick(row, keys)
	if !ok {
		return nil
	}
	n := ParseCount(v)
	return &n
}

// ParseCount 解析人数：数值直接取整，字符串去掉所有非数字字符后按整数解析，无数字时为 0
func ParseCount(v any) int {
	switch t := v.(type) {
	case int:
		return clampCount(int64(t))
	case int32:
		return clampCount(int64(t))
	case int64:
		return clampCount(t)
	case uint:
		return clampCount(int64(t))
	case float32:
		return parseFloatCount(float64(t))
	case float64:
		return parseFloatCount(t)
	case string:
		return parseDigits(t)
	case nil:
		return 0
	default:
		return parseDigits(fmt.Sprint(t))
	}
}

func parseDigits(s string) int {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		// 溢出
		return math.MaxInt32
	}
	return clampCount(n)
}

func parseFloatCount(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return clampCount(int64(math.Trunc(f)))
}

func clampCount(n int64) int {
	if n < 0 {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
