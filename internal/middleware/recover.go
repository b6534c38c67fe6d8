package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"AddressBook/config"
	"AddressBook/pkg/logger"
	"AddressBook/pkg/response"
)

// RecoverConfig recover 中间件配置
type RecoverConfig struct {
	// 是否启用堆栈追踪
	EnableStackTrace bool
	// 生产环境是否返回详细错误
	ExposeDetailsInProduction bool
	// 是否在 span 中记录异常（OpenTelemetry）
	RecordInSpan bool
	// 是否是生产环境
	IsProduction bool
}

// NewRecoverConfig 创建 recover 配置
func NewRecoverConfig() RecoverConfig {
	return RecoverConfig{
		EnableStackTrace: true,
		RecordInSpan:     true,
		IsProduction:     config.Cfg.IsProduction(),
	}
}

// RecoverMiddleware 创建 recover 中间件
func RecoverMiddleware() app.HandlerFunc {
	return RecoverMiddlewareWithConfig(NewRecoverConfig())
}

// RecoverMiddlewareWithConfig 带配置的 recover 中间件
func RecoverMiddlewareWithConfig(cfg RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err, cfg)
			}
		}()

		c.Next(ctx)
	}
}

// handlePanic 记录日志并返回 500
func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}, cfg RecoverConfig) {
	var stack []byte
	if cfg.EnableStackTrace {
		stack = getStackTrace()
	}

	fields := []zap.Field{
		zap.String("panic", fmt.Sprintf("%v", err)),
		zap.String("path", string(c.Path())),
		zap.String("method", string(c.Method())),
		zap.String("client_ip", c.ClientIP()),
		zap.String("request_id", GetRequestID(c)),
	}
	if len(stack) > 0 {
		fields = append(fields, zap.ByteString("stack", stack))
	}
	logger.Logger.Error("[PANIC RECOVERED]", fields...)

	if cfg.RecordInSpan {
		span := trace.SpanFromContext(ctx)
		span.RecordError(fmt.Errorf("panic: %v", err))
		span.SetStatus(codes.Error, "panic recovered")
	}

	detail := response.ErrorDetail{
		Code:    "INTERNAL_SERVER_ERROR",
		Kind:    "UNKNOWN",
		Message: "Internal server error",
	}
	if !cfg.IsProduction || cfg.ExposeDetailsInProduction {
		detail.Message = fmt.Sprintf("Internal error: %v", err)
		detail.Details = map[string]interface{}{"panic": fmt.Sprintf("%v", err)}
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{Error: detail})
}

// getStackTrace 当前 goroutine 的调用栈，跳过 runtime 帧
func getStackTrace() []byte {
	var buf bytes.Buffer
	buf.WriteString("goroutine panic:\n")

	for i := 3; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if strings.Contains(file, "/runtime/") {
			continue
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		buf.WriteString(fmt.Sprintf("  %s:%d\n    %s\n", file, line, fn.Name()))
	}

	return buf.Bytes()
}
