package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldCacheKey 缓存键字段
	FieldCacheKey = "cacheKey"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldPath 请求路径字段
	FieldPath = "path"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldTask 定时任务名称字段
	FieldTask = "task"

	// FieldReason 拒绝原因字段（仅服务端日志）
	FieldReason = "reason"
)
