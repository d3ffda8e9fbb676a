package code

import "net/http"

var (
	Success = NewSuss(1, lang{en: "Success", zh_cn: "成功"})

	ErrorServerInternal  = NewError(500, http.StatusInternalServerError, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorInvalidParams   = NewError(501, http.StatusBadRequest, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorNotFound        = NewError(502, http.StatusNotFound, lang{en: "Resource not found", zh_cn: "资源不存在"})
	ErrorTooManyRequests = NewError(503, http.StatusTooManyRequests, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorDBQuery         = NewError(504, http.StatusInternalServerError, lang{en: "Database query failed", zh_cn: "数据库查询失败"})
	ErrorRequestTimeout  = NewError(505, http.StatusGatewayTimeout, lang{en: "Request timeout", zh_cn: "请求超时"})

	// Auth
	ErrorNotUserAuthToken        = NewError(1001, http.StatusUnauthorized, lang{en: "Auth token is missing", zh_cn: "缺少认证令牌"})
	ErrorInvalidUserAuthToken    = NewError(1002, http.StatusUnauthorized, lang{en: "Auth token is invalid or expired", zh_cn: "认证令牌无效或已过期"})
	ErrorUserLoginPasswordFailed = NewError(1003, http.StatusBadRequest, lang{en: "Invalid login credentials", zh_cn: "邮箱或密码错误"})
	ErrorUserEmailAlreadyExists  = NewError(1004, http.StatusBadRequest, lang{en: "User already registered", zh_cn: "该邮箱已注册"})
	ErrorUserRegisterIsDisable   = NewError(1005, http.StatusForbidden, lang{en: "Signups not allowed", zh_cn: "注册已关闭"})
	ErrorPasswordNotValid        = NewError(1006, http.StatusBadRequest, lang{en: "Password should be at least 6 characters", zh_cn: "密码至少 6 位"})
	ErrorTokenGenerate           = NewError(1007, http.StatusInternalServerError, lang{en: "Failed to issue session token", zh_cn: "签发会话令牌失败"})
	ErrorUserNotFound            = NewError(1008, http.StatusNotFound, lang{en: "User not found", zh_cn: "用户不存在"})
	ErrorEmailNotValid           = NewError(1009, http.StatusBadRequest, lang{en: "Unable to validate email address: invalid format", zh_cn: "邮箱格式错误"})
	ErrorNotAuthenticated        = NewError(1010, http.StatusUnauthorized, lang{en: "User not authenticated", zh_cn: "用户未登录"})

	// Notes & folders
	ErrorNoteNotFound     = NewError(2001, http.StatusNotFound, lang{en: "Note not found", zh_cn: "笔记不存在"})
	ErrorFolderNotFound   = NewError(2002, http.StatusNotFound, lang{en: "Folder not found", zh_cn: "文件夹不存在"})
	ErrorFolderNameEmpty  = NewError(2003, http.StatusBadRequest, lang{en: "Folder name must not be empty", zh_cn: "文件夹名称不能为空"})
	ErrorNoteCreateFailed = NewError(2004, http.StatusInternalServerError, lang{en: "Failed to create note", zh_cn: "创建笔记失败"})

	// Admin
	ErrorAdminRequired = NewError(3001, http.StatusForbidden, lang{en: "Admin privileges required", zh_cn: "需要管理员权限"})
	ErrorRPCNotFound   = NewError(3002, http.StatusNotFound, lang{en: "Remote procedure not found", zh_cn: "远程过程不存在"})
)
