package models

// SummaryJob 是聚合调度器派发给摘要引擎的一个任务单元。
// 调度器每个 tick 为每所活跃大学恰好派发一个任务。
type SummaryJob struct {
	UniversityID uint   `json:"university_id"` // 目标大学
	TraceID      string `json:"trace_id"`      // 派发该任务的 tick 的追踪 ID
}
