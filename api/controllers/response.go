package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"

	"sales-dashboard-service/service/dashboard"
	"sales-dashboard-service/service/dataset"
	"sales-dashboard-service/service/models"
)

// APIResponse 统一API响应结构
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data,omitempty"`

	httpStatus int
}

// Render 实现render.Renderer，写入HTTP状态码
func (a *APIResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, a.httpStatus)
	return nil
}

// SuccessResponse 成功响应
func SuccessResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 0, Msg: msg, Data: data, httpStatus: http.StatusOK}
}

// ErrorResponse 错误响应，status同时作为业务状态码
func ErrorResponse(status int, msg string, err error) *APIResponse {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return &APIResponse{Status: status, Msg: msg, httpStatus: status}
}

// BadRequestResponse 请求参数错误
func BadRequestResponse(msg string, err error) *APIResponse {
	return ErrorResponse(http.StatusBadRequest, msg, err)
}

// NotFoundResponse 资源不存在
func NotFoundResponse(msg string, err error) *APIResponse {
	return ErrorResponse(http.StatusNotFound, msg, err)
}

// InternalErrorResponse 服务内部错误
func InternalErrorResponse(msg string, err error) *APIResponse {
	return ErrorResponse(http.StatusInternalServerError, msg, err)
}

// LoadErrorResponse 按错误类型映射加载失败的响应
func LoadErrorResponse(err error) *APIResponse {
	if errors.Is(err, dashboard.ErrUploadTooLarge) {
		return ErrorResponse(http.StatusRequestEntityTooLarge, "上传文件过大", err)
	}
	if le, ok := dataset.IsLoadError(err); ok {
		switch le.Kind {
		case dataset.LoadUnsupportedFormat:
			return ErrorResponse(http.StatusBadRequest, "不支持的文件格式", err)
		case dataset.LoadMissingResource:
			return ErrorResponse(http.StatusNotFound, "数据文件不存在", err)
		default:
			return ErrorResponse(http.StatusUnprocessableEntity, "文件内容无法解析", err)
		}
	}
	return InternalErrorResponse("加载数据集失败", err)
}

// QueryErrorResponse 查询与导出的错误响应
func QueryErrorResponse(err error) *APIResponse {
	if errors.Is(err, models.ErrInvalidRequest) {
		return BadRequestResponse("筛选条件不合法", err)
	}
	return InternalErrorResponse("计算仪表盘失败", err)
}

// decodeOptionalJSON 解析JSON请求体，空请求体按零值处理
func decodeOptionalJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := render.DecodeJSON(r.Body, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
