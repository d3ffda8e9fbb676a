// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

// CredentialsRequest sign-up / sign-in request parameters
// 注册与登录请求参数
type CredentialsRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`       // User email // 用户邮件
	Password string `json:"password" form:"password" binding:"required"` // User password // 用户密码
}
