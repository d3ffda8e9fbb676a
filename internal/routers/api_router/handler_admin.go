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

// AdminHandler privileged API router handler
// AdminHandler 管理员 API 路由处理器
// 每次调用都会在服务层重新校验管理员权限
type AdminHandler struct {
	*Handler
}

// NewAdminHandler creates AdminHandler instance
// NewAdminHandler 创建 AdminHandler 实例
func NewAdminHandler(a *app.App) *AdminHandler {
	return &AdminHandler{Handler: NewHandler(a)}
}

// UpdateProfile 修改 user_profiles 行，目前仅支持 is_admin
func (h *AdminHandler) UpdateProfile(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.UserProfilePatch{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	err := h.App.AdminService.SetUserAdmin(c.Request.Context(), pkgapp.GetUID(c), c.Param("id"), *params.IsAdmin)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success)
}

// RPC 按名称分发远程过程调用
func (h *AdminHandler) RPC(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)

	var (
		data any
		err  error
	)
	switch name := c.Param("name"); name {
	case domain.RPCIsCurrentUserAdmin:
		data, err = h.App.AdminService.IsAdmin(ctx, uid)
	case domain.RPCGetAllNotesAdmin:
		var notes []*domain.AdminNote
		if notes, err = h.App.AdminService.AllNotes(ctx, uid); err == nil && notes == nil {
			notes = []*domain.AdminNote{}
		}
		data = notes
	case domain.RPCGetAllUsersAdmin:
		var users []*domain.AdminUser
		if users, err = h.App.AdminService.AllUsers(ctx, uid); err == nil && users == nil {
			users = []*domain.AdminUser{}
		}
		data = users
	case domain.RPCAdminUpdateNote:
		params := &dto.AdminUpdateNoteRequest{}
		if valid, errs := pkgapp.BindAndValid(c, params); !valid {
			response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
			return
		}
		err = h.App.AdminService.UpdateNote(ctx, uid, params.NoteID, params.Updates)
	case domain.RPCAdminDeleteNote:
		params := &dto.AdminDeleteNoteRequest{}
		if valid, errs := pkgapp.BindAndValid(c, params); !valid {
			response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
			return
		}
		err = h.App.AdminService.DeleteNote(ctx, uid, params.NoteID)
	default:
		response.ToResponse(code.ErrorRPCNotFound.WithDetails(name))
		return
	}

	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	if data == nil {
		response.ToResponse(code.Success)
		return
	}
	response.ToResponse(code.Success.WithData(data))
}
