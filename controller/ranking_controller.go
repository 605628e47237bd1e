package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"heartlink-service/conf"
	"heartlink-service/controller/respond"
	"heartlink-service/service/ranking_service"
	"heartlink-service/tool"
)

var (
	rankingReader *ranking_service.Reader
	rankingSyncer *ranking_service.Syncer
)

// SetRankingServices 注入排行榜服务实例，启动时调用一次
func SetRankingServices(reader *ranking_service.Reader, syncer *ranking_service.Syncer) {
	rankingReader = reader
	rankingSyncer = syncer
}

// GetRanking godoc
// @Summary 获取最高连接数排行榜
// @Description 返回按历史最高连接数倒序的用户排行榜，同一小时内的重复请求由进程缓存直接返回
// @Tags Ranking API
// @Produce json
// @Param limit query int false "返回条数，默认取配置值"
// @Param offset query int false "起始偏移，大于0时绕过缓存"
// @Success 200 {object} respond.Response{data=ranking_service.RankingResult} "成功响应"
// @Failure 500 {object} respond.Response "服务器内部错误"
// @Router /v1/ranking [get]
func GetRanking(c *gin.Context) {
	var t int64 = tool.MakeTimestamp()

	if rankingReader == nil {
		c.JSONP(http.StatusOK, respond.RespErr(errors.New("排行榜服务未初始化"), tool.MakeTimestamp()-t, respond.HttpsCodeError))
		return
	}

	defaultLimit := conf.RankingDefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 50
	}

	limit := tool.StrToIntWithDefault(c.Query("limit"), defaultLimit)
	if limit <= 0 || limit > 500 {
		limit = defaultLimit
	}
	offset := tool.StrToIntWithDefault(c.Query("offset"), 0)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := rankingReader.GetRanking(ctx, limit, offset)
	if err != nil {
		c.JSONP(http.StatusOK, respond.RespErr(err, tool.MakeTimestamp()-t, respond.HttpsCodeError))
		return
	}

	c.JSONP(http.StatusOK, respond.RespSuccess(result, tool.MakeTimestamp()-t))
}

// SyncRanking godoc
// @Summary 手动触发排行榜同步
// @Description 全量同步用户分值到快速存储的有序索引并预热缓存，用于首次上线的索引引导
// @Tags Ranking API
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} respond.Response "成功响应，data.synced 为写入条数"
// @Failure 401 {object} respond.Response "认证失败"
// @Failure 500 {object} respond.Response "服务器内部错误"
// @Router /v1/ranking/sync [post]
func SyncRanking(c *gin.Context) {
	var t int64 = tool.MakeTimestamp()

	if rankingSyncer == nil {
		c.JSONP(http.StatusOK, respond.RespErr(errors.New("排行榜服务未初始化"), tool.MakeTimestamp()-t, respond.HttpsCodeError))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Minute)
	defer cancel()

	count, err := rankingSyncer.SyncAndWarm(ctx)
	if err != nil {
		c.JSONP(http.StatusOK, respond.RespErr(err, tool.MakeTimestamp()-t, respond.HttpsCodeError))
		return
	}

	responseData := map[string]interface{}{
		"synced": count,
	}
	c.JSONP(http.StatusOK, respond.RespSuccess(responseData, tool.MakeTimestamp()-t))
}
