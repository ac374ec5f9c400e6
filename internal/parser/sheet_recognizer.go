package parser

import (
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/allocation"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

var (
	arrivalSheetHints   = []string{"arrival", "وصول", "قدوم"}
	departureSheetHints = []string{"departure", "مغادرة"}
	summarySheetHints   = []string{"summary", "total", "ملخص", "إجمالي"}
)

// SheetRecognizer Sheet 类型识别器
type SheetRecognizer struct{}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer() *SheetRecognizer {
	return &SheetRecognizer{}
}

// Recognize 识别 Sheet 类型
//
// 用表头能命中的逻辑字段数打分：团组名、目的地、总人数、住宿（单列或复合列）、航班。
func (r *SheetRecognizer) Recognize(sheetName string, columnNames []string) SheetRecognitionResult {
	sample := model.RawInputRecord{}
	for _, col := range columnNames {
		if key := HeaderKey(col); key != "" {
			sample[key] = ""
		}
	}
	n := allocation.Normalize(sample)

	checks := []bool{
		n.GroupName != nil,
		n.Destination != nil,
		n.TotalPilgrims != nil || n.PilgrimsAssigned != nil,
		n.AccommodationName != nil || n.MultiField != nil,
		n.FlightNumber != nil || n.TravelDate != nil,
	}
	matchCount := 0
	for _, ok := range checks {
		if ok {
			matchCount++
		}
	}
	confidence := float64(matchCount) / float64(len(checks))

	// Sheet 名称辅助判定
	switch {
	case ContainsAny(sheetName, departureSheetHints):
		if confidence >= 0.4 {
			return SheetRecognitionResult{SheetName: sheetName, SheetType: SheetTypeDepartures, Confidence: confidence + 0.2}
		}
	case ContainsAny(sheetName, arrivalSheetHints):
		if confidence >= 0.4 {
			return SheetRecognitionResult{SheetName: sheetName, SheetType: SheetTypeArrivals, Confidence: confidence + 0.2}
		}
	case ContainsAny(sheetName, summarySheetHints):
		return SheetRecognitionResult{SheetName: sheetName, SheetType: SheetTypeSummary, Confidence: 0.5}
	}

	// 没有名称提示时默认视为到达表
	if confidence >= 0.6 {
		return SheetRecognitionResult{SheetName: sheetName, SheetType: SheetTypeArrivals, Confidence: confidence}
	}

	return SheetRecognitionResult{
		SheetName:  sheetName,
		SheetType:  SheetTypeUnknown,
		Confidence: confidence,
	}
}

// Movement Sheet 类型对应的团组动向
func (t SheetType) Movement() model.Movement {
	if t == SheetTypeDepartures {
		return model.MovementDeparture
	}
	return model.MovementArrival
}
