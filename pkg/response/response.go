package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"AddressBook/pkg/errors"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Kind    string                 `json:"kind"`
	Message string                 `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// StatusOf 按错误类别映射 HTTP 状态码
func StatusOf(err error) int {
	switch errors.KindOf(err) {
	case errors.KindValidation:
		return http.StatusBadRequest
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindDuplicateName, errors.KindDuplicatePhone,
		errors.KindNothingToUndo, errors.KindNothingToRedo:
		return http.StatusConflict
	case errors.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func detailOf(err error) ErrorDetail {
	def, ok := errors.As(err)
	if !ok {
		return ErrorDetail{Code: "INTERNAL_ERROR", Kind: string(errors.KindUnknown), Message: "Internal server error"}
	}

	// 带上下文的包装错误保留完整信息，例如 "Contact not found: Bob"
	return ErrorDetail{Code: def.Code, Kind: string(def.Kind), Message: err.Error()}
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(StatusOf(err), ErrorResponse{Error: detailOf(err)})
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	detail := detailOf(err)
	detail.Details = details
	c.JSON(StatusOf(err), ErrorResponse{Error: detail})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func Created(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Kind:    string(errors.KindValidation),
			Message: err.Error(),
		},
	})
}

// CSV 返回 text/csv 附件
func CSV(ctx context.Context, c *app.RequestContext, filename string, body []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

// NoContent 返回 204 No Content（用于 DELETE 等操作）
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
