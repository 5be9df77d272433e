/*
 * @module api/middleware/api_key_auth
 * @description API Key鉴权中间件，以bcrypt哈希校验管理端接口的访问密钥
 * @architecture 中间件模式 - HTTP请求拦截和验证
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow Key提取 -> bcrypt比对 -> 下一个处理器
 * @rules 未配置AUDIT_API_KEY_HASH时中间件直接放行；白名单路径不鉴权
 * @dependencies net/http, golang.org/x/crypto/bcrypt
 * @refs api/routes.go
 */

package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyHeader 请求头中API Key的键名
const APIKeyHeader = "X-API-Key"

// APIKeyAuthMiddleware API Key认证中间件
type APIKeyAuthMiddleware struct {
	keyHash        string
	whitelistPaths []string
}

// NewAPIKeyAuthMiddleware 创建API Key认证中间件实例
// 密钥以bcrypt哈希形式保存在环境变量AUDIT_API_KEY_HASH中，明文绝不落配置
func NewAPIKeyAuthMiddleware() *APIKeyAuthMiddleware {
	return &APIKeyAuthMiddleware{
		keyHash: os.Getenv("AUDIT_API_KEY_HASH"),
		whitelistPaths: []string{
			"/health",
			"/ready",
			"/metrics",
			"/swagger",
			"/sse",
		},
	}
}

// Handler 返回chi中间件处理函数
func (m *APIKeyAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 未配置哈希时视为开放部署，直接放行
		if m.keyHash == "" {
			next.ServeHTTP(w, r)
			return
		}

		if m.isWhitelisted(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(APIKeyHeader)
		if key == "" {
			m.unauthorized(w, r, "缺少API Key")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(m.keyHash), []byte(key)); err != nil {
			m.unauthorized(w, r, "API Key无效")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isWhitelisted 判断路径是否在免鉴权白名单中
func (m *APIKeyAuthMiddleware) isWhitelisted(path string) bool {
	for _, prefix := range m.whitelistPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// unauthorized 返回401响应
func (m *APIKeyAuthMiddleware) unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]interface{}{
		"status": http.StatusUnauthorized,
		"msg":    msg,
	})
}
