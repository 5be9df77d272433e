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

// PaginatedResponse 分页响应结构
type PaginatedResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"100"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}

// SuccessResponse 返回成功响应
func SuccessResponse(w http.ResponseWriter, r *http.Request, msg string, data interface{}) {
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    msg,
		Data:   data,
	})
}

// BadRequestResponse 返回请求参数错误响应
func BadRequestResponse(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, APIResponse{
		Status: http.StatusBadRequest,
		Msg:    msg,
	})
}

// NotFoundResponse 返回资源不存在响应
func NotFoundResponse(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, APIResponse{
		Status: http.StatusNotFound,
		Msg:    msg,
	})
}

// InternalErrorResponse 返回服务器内部错误响应
func InternalErrorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, APIResponse{
		Status: http.StatusInternalServerError,
		Msg:    msg,
	})
}
