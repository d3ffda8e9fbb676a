package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldEmail 用户邮箱字段
	FieldEmail = "email"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldStore 状态存储名称字段
	FieldStore = "store"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldFolderID 文件夹 ID 字段
	FieldFolderID = "folderId"

	// FieldRPC 远程过程名称字段
	FieldRPC = "rpc"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldSessionID 会话 ID 字段
	FieldSessionID = "sessionId"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldCount 数量字段
	FieldCount = "count"
)
