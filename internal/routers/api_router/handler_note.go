package api_router

import (
	"github.com/haierkeys/fast-note-client/internal/app"
	"github.com/haierkeys/fast-note-client/internal/domain"
	"github.com/haierkeys/fast-note-client/internal/dto"
	pkgapp "github.com/haierkeys/fast-note-client/pkg/app"
	"github.com/haierkeys/fast-note-client/pkg/code"
	apperrors "github.com/haierkeys/fast-note-client/pkg/errors"

	"github.com/gin-gonic/gin"
)

// NoteHandler note API router handler
// NoteHandler 笔记 API 路由处理器
// 所有操作都限定在当前令牌的用户范围内
type NoteHandler struct {
	*Handler
}

// NewNoteHandler creates NoteHandler instance
// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a)}
}

// List 获取笔记列表，默认不含已归档笔记，按更新时间倒序
func (h *NoteHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	notes, err := h.App.NoteService.List(c.Request.Context(), pkgapp.GetUID(c), domain.NoteQuery{IncludeArchived: params.IncludeArchived})
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	if notes == nil {
		notes = []*domain.Note{}
	}
	response.ToResponse(code.Success.WithData(notes))
}

// Create 插入笔记并返回完整行
func (h *NoteHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &domain.NoteInsert{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	note, err := h.App.NoteService.Create(c.Request.Context(), pkgapp.GetUID(c), params)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(note))
}

// Update 按 id 部分更新笔记，返回更新后的可写字段
func (h *NoteHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	patch := domain.NotePatch{}

	valid, errs := pkgapp.BindAndValid(c, &patch)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	updated, err := h.App.NoteService.Update(c.Request.Context(), pkgapp.GetUID(c), c.Param("id"), patch)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(updated))
}

// Delete 按 id 删除笔记
func (h *NoteHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	if err := h.App.NoteService.Delete(c.Request.Context(), pkgapp.GetUID(c), c.Param("id")); err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success)
}

// FolderHandler folder API router handler
// FolderHandler 文件夹 API 路由处理器
type FolderHandler struct {
	*Handler
}

// NewFolderHandler creates FolderHandler instance
// NewFolderHandler 创建 FolderHandler 实例
func NewFolderHandler(a *app.App) *FolderHandler {
	return &FolderHandler{Handler: NewHandler(a)}
}

// List 获取文件夹列表，按名称升序
func (h *FolderHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	folders, err := h.App.FolderService.List(c.Request.Context(), pkgapp.GetUID(c))
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	if folders == nil {
		folders = []*domain.Folder{}
	}
	response.ToResponse(code.Success.WithData(folders))
}

// Create 创建文件夹
func (h *FolderHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &domain.FolderInsert{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	folder, err := h.App.FolderService.Create(c.Request.Context(), pkgapp.GetUID(c), params)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(folder))
}
