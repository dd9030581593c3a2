/*
 * @module api/middleware/apikey_auth
 * @description 导出API密钥鉴权中间件，验证 X-API-Key 请求头
 * @architecture 中间件模式 - HTTP请求拦截和验证
 * @stateFlow 密钥提取 -> bcrypt验证 -> 上下文注入 -> 下一个处理器
 * @rules 验证通过后将密钥记录注入上下文；验证失败统一返回401
 * @dependencies net/http, github.com/go-chi/render
 * @refs service/export/export_service.go, api/routes.go
 */

package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/render"

	"logistics-intel-service/service/export"
	"logistics-intel-service/service/models"
)

// ContextKey 上下文键类型
type ContextKey string

// ApiKeyContextKey 密钥记录在上下文中的键
const ApiKeyContextKey ContextKey = "export_api_key"

// ApiKeyHeader 密钥请求头名
const ApiKeyHeader = "X-API-Key"

// ApiKeyAuthMiddleware 导出API密钥鉴权中间件
type ApiKeyAuthMiddleware struct {
	exportService *export.ExportService
}

// NewApiKeyAuthMiddleware 创建导出API密钥鉴权中间件实例
func NewApiKeyAuthMiddleware(exportService *export.ExportService) *ApiKeyAuthMiddleware {
	return &ApiKeyAuthMiddleware{exportService: exportService}
}

// Middleware 鉴权中间件处理函数
func (m *ApiKeyAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keyValue := r.Header.Get(ApiKeyHeader)
		if keyValue == "" {
			// 兼容查询参数形式，便于浏览器直接下载
			keyValue = r.URL.Query().Get("api_key")
		}
		if keyValue == "" {
			m.respondUnauthorized(w, r, "缺少API密钥")
			return
		}

		key, err := m.exportService.VerifyApiKey(keyValue)
		if err != nil {
			m.respondUnauthorized(w, r, "API密钥无效")
			return
		}

		ctx := context.WithValue(r.Context(), ApiKeyContextKey, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// respondUnauthorized 返回401未授权响应
func (m *ApiKeyAuthMiddleware) respondUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	render.JSON(w, r, map[string]interface{}{
		"status":  http.StatusUnauthorized,
		"message": message,
		"error":   "Unauthorized",
	})
}

// GetApiKeyFromContext 从上下文中获取密钥记录
func GetApiKeyFromContext(ctx context.Context) (*models.ExportApiKey, bool) {
	key, ok := ctx.Value(ApiKeyContextKey).(*models.ExportApiKey)
	return key, ok
}
