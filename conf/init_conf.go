package conf

import (
	"fmt"

	"github.com/spf13/viper"
)

var (
	Net  string = ""
	Port string = ""

	RdsDsn          string = ""
	RdsMaxOpenConns int    = 0
	RdsMaxIgleConns int    = 0

	// Redis (排行榜快速存储)
	RedisAddr     string = ""
	RedisPassword string = ""
	RedisDB       int    = 0

	// Ranking Configuration
	RankingKey          string = ""
	RankingSyncMinute   int    = 0
	RankingDefaultLimit int    = 0
	RankingAPIKeyHash   string = "" // X-API-KEY 的 bcrypt 哈希，用于手动同步端点

	// Notify Configuration
	NotifyCooldownMs   int64 = 0
	NotifyRetentionMs  int64 = 0
	NotifySweepHourUTC int   = 0

	// Dispatch Center Configuration
	DispatchCenterEnabled bool   = false
	HeartbeatDBPath       string = ""

	// Stream Client Configuration
	StreamServerURL string = ""
	StreamAuthKey   string = ""
	StreamPath      string = ""
	StreamTimeout   int    = 0

	// Expo Provider Configuration
	ExpoAccessToken     string = ""
	ExpoTimeout         string = ""
	ExpoMaxRetries      int    = 0
	ExpoBaseDelay       string = ""
	ExpoDefaultSound    string = ""
	ExpoDefaultTTL      int    = 0
	ExpoDefaultPriority string = ""
	ExpoBatchSize       int    = 0
)

func InitConfig(configPath string) {
	if configPath == "" {
		configPath = GetYaml()
	}
	// Set the file name of the configurations file
	fmt.Printf("configPath:%s\n", configPath)
	viper.SetConfigFile(configPath)
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("Fatal error config file: %s \n", err))
	}

	Net = viper.GetString("net")
	Port = viper.GetString("port")

	RdsDsn = viper.GetString("rds.dsn")
	RdsMaxOpenConns = viper.GetInt("rds.max_open_conns")
	RdsMaxIgleConns = viper.GetInt("rds.max_igle_conns")

	// 读取 Redis 配置
	RedisAddr = viper.GetString("redis.addr")
	RedisPassword = viper.GetString("redis.password")
	RedisDB = viper.GetInt("redis.db")

	// 读取排行榜配置
	RankingKey = viper.GetString("ranking.key")
	RankingSyncMinute = viper.GetInt("ranking.sync_minute")
	RankingDefaultLimit = viper.GetInt("ranking.default_limit")
	RankingAPIKeyHash = viper.GetString("ranking.api_key_hash")

	// 读取通知策略配置
	NotifyCooldownMs = viper.GetInt64("notify.cooldown_ms")
	NotifyRetentionMs = viper.GetInt64("notify.retention_ms")
	NotifySweepHourUTC = viper.GetInt("notify.sweep_hour_utc")

	// 读取调度中心配置
	DispatchCenterEnabled = viper.GetBool("dispatch_center.enabled")
	HeartbeatDBPath = viper.GetString("dispatch_center.db_path")

	// 读取实时流客户端配置
	StreamServerURL = viper.GetString("stream_client.server_url")
	StreamAuthKey = viper.GetString("stream_client.auth_key")
	StreamPath = viper.GetString("stream_client.path")
	StreamTimeout = viper.GetInt("stream_client.timeout")

	// 读取 Expo 提供者配置
	ExpoAccessToken = viper.GetString("push.providers.expo.access_token")
	ExpoTimeout = viper.GetString("push.providers.expo.timeout")
	ExpoMaxRetries = viper.GetInt("push.providers.expo.max_retries")
	ExpoBaseDelay = viper.GetString("push.providers.expo.base_delay")
	ExpoDefaultSound = viper.GetString("push.providers.expo.default_sound")
	ExpoDefaultTTL = viper.GetInt("push.providers.expo.default_ttl")
	ExpoDefaultPriority = viper.GetString("push.providers.expo.default_priority")
	ExpoBatchSize = viper.GetInt("push.providers.expo.batch_size")
}
