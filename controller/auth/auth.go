package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"heartlink-service/conf"
	"heartlink-service/controller/respond"
	"heartlink-service/tool"
)

// APIKeyMiddleware X-API-KEY 请求头鉴权
// 配置里只存 bcrypt 哈希，明文密钥不落盘；未配置哈希时端点整体关闭
func APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := tool.MakeTimestamp()

		if conf.RankingAPIKeyHash == "" {
			c.JSONP(http.StatusForbidden, respond.RespErr(errors.New("管理端点未启用"), tool.MakeTimestamp()-t, respond.HttpsCodeAuthError))
			c.Abort()
			return
		}

		apiKey := c.GetHeader("X-API-KEY")
		if apiKey == "" {
			c.JSONP(http.StatusUnauthorized, respond.RespErr(errors.New("缺少 X-API-KEY 请求头"), tool.MakeTimestamp()-t, respond.HttpsCodeAuthError))
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(conf.RankingAPIKeyHash), []byte(apiKey)); err != nil {
			c.JSONP(http.StatusUnauthorized, respond.RespErr(errors.New("X-API-KEY 无效"), tool.MakeTimestamp()-t, respond.HttpsCodeAuthError))
			c.Abort()
			return
		}

		c.Next()
	}
}
