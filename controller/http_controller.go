package controller

import (
	"fmt"
	"net/http"

	"heartlink-service/conf"
	"heartlink-service/controller/auth"

	_ "heartlink-service/docs" // 导入生成的 swagger 文档

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func Run() {
	router := gin.Default()
	router.Use(Cors())
	router.Use(Logger())

	// Swagger 文档路由
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/v1")
	{
		rankingGroup := v1.Group("/ranking")
		{
			// 公开读取端点
			rankingGroup.GET("", GetRanking)
			// 手动同步端点走 X-API-KEY 鉴权
			rankingGroup.POST("/sync", auth.APIKeyMiddleware(), SyncRanking)
		}
	}

	_ = router.Run(fmt.Sprintf("0.0.0.0:%s", conf.Port))
}

func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Header("Access-Control-Allow-Headers", "Content-Type,AccessToken,X-CSRF-Token, Authorization,X-API-KEY")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Set("content-type", "application/json")
		if method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
		}
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(context *gin.Context) {
		context.Next()
	}
}
