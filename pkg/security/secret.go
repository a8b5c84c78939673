package security

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
)

// CronSecretHeader 外部定时任务携带共享密钥的请求头
const CronSecretHeader = "X-Cron-Secret"

// RequestSecret 优先读 X-Cron-Secret，其次 Authorization: Bearer，都没有返回空串
func RequestSecret(c *gin.Context) string {
	if token := c.GetHeader(CronSecretHeader); token != "" {
		return token
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// SecretMatches 常量时间比较，未配置密钥时一律拒绝
func SecretMatches(given, expected string) bool {
	if expected == "" || given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(expected)) == 1
}
