package exporter

// 导出阶段
const (
	StageLoadGroups  = "读取团组"
	StageBackfill    = "回填住宿 ID"
	StageWriteGroups = "写入团组"
	StageWritten     = "写入完成"
	StageDone        = "完成"
)

// ProgressEvent 导出进度事件
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
}

// reportProgress 百分比截断到 [0, 100]；progress 为 nil 时忽略
func reportProgress(progress func(ProgressEvent), percent int, stage string) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{
		Percent: min(max(percent, 0), 100),
		Stage:   stage,
	})
}

// scaleProgress 将子步骤进度映射到 [from, to] 区间
func scaleProgress(progress func(ProgressEvent), from, to int) func(ProgressEvent) {
	return func(p ProgressEvent) {
		reportProgress(progress, from+p.Percent*(to-from)/100, p.Stage)
	}
}
