package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"heartlink-service/conf"
	"heartlink-service/controller"
	"heartlink-service/major"
	"heartlink-service/service/dispatch_center"
	"heartlink-service/service/expo_service"
	"heartlink-service/service/heartbeat_store"
	"heartlink-service/service/push_service"
	"heartlink-service/service/ranking_service"
	"heartlink-service/service/rate_limit_service"
	"heartlink-service/service/resolver_service"
	"heartlink-service/service/schedule_service"
	"heartlink-service/service/stream_service"
	"heartlink-service/service/sweeper_service"
)

// initDispatchCenter 初始化通知派发链路：本地样本存储 → 限流器 → 推送提供者 → 实时流客户端
func initDispatchCenter(resolver *resolver_service.Resolver) *stream_service.Manager {
	if !conf.DispatchCenterEnabled {
		log.Printf("📴 派发中心未启用，跳过初始化")
		return nil
	}

	log.Printf("🚀 开始初始化派发中心...")

	// 1. 本地心跳样本存储
	storeConfig := &heartbeat_store.Config{
		DBPath: conf.HeartbeatDBPath,
	}
	if storeConfig.DBPath == "" {
		storeConfig.DBPath = "./data/heartbeat_pebble"
	}
	if err := heartbeat_store.InitializeGlobalService(storeConfig); err != nil {
		log.Fatalf("❌ 初始化心跳样本存储失败: %v", err)
	}
	store := heartbeat_store.GetGlobalService()

	// 2. 冷却限流器
	cooldownMs := conf.NotifyCooldownMs
	if cooldownMs == 0 {
		cooldownMs = 300000 // 5分钟
	}
	limiter := rate_limit_service.NewLimiter(store, cooldownMs)

	// 3. 推送服务与 Expo 提供者
	pushManager := push_service.NewManager()
	expoConfig := &expo_service.Config{
		AccessToken:     conf.ExpoAccessToken,
		Timeout:         parseDuration(conf.ExpoTimeout, 30*time.Second),
		MaxRetries:      getIntWithDefault(conf.ExpoMaxRetries, 3),
		BaseDelay:       parseDuration(conf.ExpoBaseDelay, 1*time.Second),
		DefaultSound:    getStringWithDefault(conf.ExpoDefaultSound, "default"),
		DefaultTTL:      getIntWithDefault(conf.ExpoDefaultTTL, 3600),
		DefaultPriority: getStringWithDefault(conf.ExpoDefaultPriority, "high"),
		BatchSize:       getIntWithDefault(conf.ExpoBatchSize, 100),
	}
	if err := pushManager.RegisterExpoProvider(expoConfig); err != nil {
		log.Printf("⚠️ 注册 Expo 推送提供者失败: %v", err)
	} else {
		log.Printf("✅ 已注册 Expo 推送提供者")
	}
	if err := pushManager.Start(); err != nil {
		log.Printf("⚠️ 启动推送服务失败: %v", err)
	}

	// 4. 派发中心
	center := dispatch_center.NewDispatchCenter(resolver, store, limiter, pushManager)

	// 5. 实时流客户端，写事件直接接到派发中心
	streamConfig := &stream_service.Config{
		ServerURL: conf.StreamServerURL,
		AuthKey:   conf.StreamAuthKey,
		Path:      conf.StreamPath,
		Timeout:   conf.StreamTimeout,
	}
	streamManager := stream_service.NewManager(streamConfig)
	streamManager.SetHeartbeatWriteHandler(center.OnHeartbeatWrite)
	streamManager.SetTriggerWriteHandler(center.OnTriggerWrite)

	if err := streamManager.Start(); err != nil {
		log.Printf("⚠️ 实时流客户端启动失败，等待重连: %v", err)
	}

	log.Printf("✅ 派发中心初始化完成")
	log.Printf("🔗 流服务器: %s", conf.StreamServerURL)
	log.Printf("🗄️ 数据库路径: %s", storeConfig.DBPath)

	// 6. 留存清扫任务（与派发中心共用样本存储）
	retentionMs := conf.NotifyRetentionMs
	if retentionMs == 0 {
		retentionMs = 3600000 // 1小时
	}
	sweeper := sweeper_service.NewSweeper(store, retentionMs)
	globalScheduler.RunDailyAtHour("retention-sweep", conf.NotifySweepHourUTC, func() {
		if _, err := sweeper.Sweep(); err != nil {
			log.Printf("🔥 留存清扫失败: %v", err)
		}
	})

	return streamManager
}

// initRanking 初始化排行榜同步与读取服务
func initRanking(resolver *resolver_service.Resolver) {
	if conf.RedisAddr == "" {
		log.Printf("📴 未配置 Redis，排行榜服务不可用")
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis 连接检查失败: %v", err)
	} else {
		log.Printf("✅ Redis 连接成功: %s", conf.RedisAddr)
	}

	rankingKey := getStringWithDefault(conf.RankingKey, "ranking:maxConnections")
	warmLimit := getIntWithDefault(conf.RankingDefaultLimit, 50)

	reader := ranking_service.NewReader(rdb, resolver, rankingKey)
	syncer := ranking_service.NewSyncer(rdb, resolver, reader, rankingKey, warmLimit)
	controller.SetRankingServices(reader, syncer)

	// 每小时整点前同步一次，同步成功后立刻预热缓存
	syncMinute := conf.RankingSyncMinute
	if syncMinute <= 0 || syncMinute > 59 {
		syncMinute = 59
	}
	globalScheduler.RunHourlyAtMinute("ranking-sync", syncMinute, func() {
		jobCtx, jobCancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer jobCancel()
		if _, err := syncer.SyncAndWarm(jobCtx); err != nil {
			log.Printf("🔥 排行榜同步失败: %v", err)
		}
	})
}

var globalScheduler = schedule_service.NewScheduler()

// 辅助函数：解析时间间隔字符串
func parseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Printf("⚠️ 解析时间间隔失败 '%s'，使用默认值: %v", durationStr, defaultDuration)
		return defaultDuration
	}
	return duration
}

// 辅助函数：获取字符串配置值，提供默认值
func getStringWithDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

// 辅助函数：获取整数配置值，提供默认值
func getIntWithDefault(value, defaultValue int) int {
	if value == 0 {
		return defaultValue
	}
	return value
}

// Package main
// @title HeartLink Service API
// @version 1.0
// @description 心跳分享应用的后端服务：推送派发、排行榜读取与留存清扫
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-KEY
func main() {
	var env string
	flag.StringVar(&env, "env", "mainnet", "env config: testnet, mainnet")
	flag.Parse()

	switch env {
	case "mainnet":
		conf.SystemEnvironmentEnum = conf.MainnetEnvironmentEnum
	case "testnet":
		conf.SystemEnvironmentEnum = conf.TestnetEnvironmentEnum
	default:
		conf.SystemEnvironmentEnum = conf.ExampleEnvironmentEnum
	}

	conf.InitConfig("")

	fmt.Printf("run heartlink-service, env: %s\n", env)

	major.InitSqlConfig()
	resolver := resolver_service.NewResolver(major.GetSqlDB())

	initDispatchCenter(resolver)
	initRanking(resolver)

	controller.Run()
}
