package dto

// NoteListRequest note listing query parameters
// 笔记列表查询参数
type NoteListRequest struct {
	IncludeArchived bool `form:"include_archived"` // Include archived notes // 是否包含已归档笔记
}

