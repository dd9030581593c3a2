package controllers

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIResponse 统一API响应结构
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data,omitempty"`
}

// Render 实现 render.Renderer 接口
func (resp *APIResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// PaginatedResponse 分页响应结构
type PaginatedResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"100"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}

// SuccessResponse 构造成功响应
func SuccessResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{
		Status: http.StatusOK,
		Msg:    msg,
		Data:   data,
	}
}

// ErrorResponse 构造错误响应，err 不为 nil 时附带错误详情
func ErrorResponse(status int, msg string, err error) *APIResponse {
	resp := &APIResponse{
		Status: status,
		Msg:    msg,
	}
	if err != nil {
		resp.Data = map[string]interface{}{"error": err.Error()}
	}
	return resp
}

// renderPage 输出分页响应
func renderPage(w http.ResponseWriter, r *http.Request, msg string, data interface{}, total int64, page, size int) {
	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    msg,
		Data:   data,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}
