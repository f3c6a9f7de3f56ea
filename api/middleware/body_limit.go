/*
 * @module api/middleware/body_limit
 * @description 请求体大小限制中间件，超过上限时返回413
 * @architecture 中间件模式 - HTTP请求拦截
 * @stateFlow 检查Content-Length -> 包装请求体 -> 下一个处理器
 * @rules 上限为0时不限制；multipart表单的额外开销按固定余量放宽
 * @dependencies net/http, github.com/go-chi/render
 * @refs api/routes.go
 */

package middleware

import (
	"net/http"

	"github.com/go-chi/render"
)

// multipart边界与表单字段的余量
const formOverhead = 1 << 20

// RejectFunc 请求因超过限制被拒绝时回调，可返回替代的错误响应
type RejectFunc func(r *http.Request, limit int64) render.Renderer

// BodyLimit 请求体大小限制
type BodyLimit struct {
	maxBytes int64
	onReject RejectFunc
}

// NewBodyLimit 创建请求体大小限制中间件，onReject可为nil
func NewBodyLimit(maxBytes int64, onReject RejectFunc) *BodyLimit {
	return &BodyLimit{maxBytes: maxBytes, onReject: onReject}
}

// Handler 中间件处理函数
func (m *BodyLimit) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.maxBytes <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		limit := m.maxBytes + formOverhead
		if r.ContentLength > limit {
			if m.onReject != nil {
				if resp := m.onReject(r, m.maxBytes); resp != nil {
					render.Render(w, r, resp)
					return
				}
			}
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, map[string]interface{}{
				"status": http.StatusRequestEntityTooLarge,
				"msg":    "请求体超过大小限制",
			})
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}
