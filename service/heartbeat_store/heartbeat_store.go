package heartbeat_store

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"heartlink-service/models"

	"github.com/cockroachdb/pebble"
)

const (
	CollectionLiveHeartbeats = "live_heartbeats"       // 实时心跳集合 key: userId, value: HeartbeatSample
	CollectionTriggers       = "notification_triggers" // 通知触发集合 key: userId, value: NotificationTrigger
)

// HeartbeatStore 实时流本地存储服务
// 镜像实时流的两个集合：心跳样本与通知触发记录
type HeartbeatStore struct {
	collectionMgr *CollectionManager // 集合管理器
	mu            sync.RWMutex
	path          string
}

// Config Pebble 配置
type Config struct {
	DBPath string `yaml:"db_path" json:"db_path"` // 数据库文件路径
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		DBPath: "./data/heartbeat_pebble",
	}
}

// CollectionManager 集合管理器，每个集合使用独立的 Pebble 实例
type CollectionManager struct {
	mu          sync.RWMutex
	collections map[string]*pebble.DB
	basePath    string
}

// NewCollectionManager 创建集合管理器
func NewCollectionManager(basePath string) *CollectionManager {
	return &CollectionManager{
		collections: make(map[string]*pebble.DB),
		basePath:    basePath,
	}
}

// GetCollection 获取指定集合的数据库实例
func (cm *CollectionManager) GetCollection(collectionName string) (*pebble.DB, error) {
	cm.mu.RLock()
	if db, exists := cm.collections[collectionName]; exists {
		cm.mu.RUnlock()
		return db, nil
	}
	cm.mu.RUnlock()

	cm.mu.Lock()
	defer cm.mu.Unlock()

	// 双重检查，防止并发创建
	if db, exists := cm.collections[collectionName]; exists {
		return db, nil
	}

	dbPath := filepath.Join(cm.basePath, collectionName)

	opts := &pebble.Options{
		Cache:                       pebble.NewCache(16 << 20), // 16MB 缓存
		DisableWAL:                  false,
		FormatMajorVersion:          pebble.FormatNewest,
		L0CompactionThreshold:       2,
		L0StopWritesThreshold:       1000,
		LBaseMaxBytes:               16 << 20,
		MaxOpenFiles:                4096,
		MemTableSize:                16 << 20,
		MemTableStopWritesThreshold: 4,
	}

	db, err := pebble.Open(dbPath, opts)
	if err != nil {
		return nil, fmt.Errorf("打开集合 %s 的数据库失败: %w", collectionName, err)
	}

	cm.collections[collectionName] = db
	log.Printf("✅ 集合 %s 数据库初始化成功: %s", collectionName, dbPath)

	return db, nil
}

// CloseAll 关闭所有集合的数据库
func (cm *CollectionManager) CloseAll() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	var errs []string
	for collectionName, db := range cm.collections {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("关闭集合 %s 失败: %v", collectionName, err))
		} else {
			log.Printf("✅ 集合 %s 数据库已关闭", collectionName)
		}
	}

	cm.collections = make(map[string]*pebble.DB)

	if len(errs) > 0 {
		return fmt.Errorf("关闭数据库时发生错误: %s", strings.Join(errs, "; "))
	}
	return nil
}

// NewHeartbeatStore 创建新的存储服务实例
func NewHeartbeatStore(config *Config) *HeartbeatStore {
	if config == nil {
		config = DefaultConfig()
	}

	return &HeartbeatStore{
		path:          config.DBPath,
		collectionMgr: NewCollectionManager(config.DBPath),
	}
}

// Initialize 初始化存储
func (hs *HeartbeatStore) Initialize() error {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	dbPath, err := filepath.Abs(hs.path)
	if err != nil {
		return fmt.Errorf("获取数据库路径失败: %w", err)
	}

	log.Printf("✅ 心跳存储初始化成功: %s", dbPath)
	return nil
}

// Close 关闭存储
func (hs *HeartbeatStore) Close() error {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if hs.collectionMgr != nil {
		if err := hs.collectionMgr.CloseAll(); err != nil {
			return fmt.Errorf("关闭集合数据库失败: %w", err)
		}
	}

	log.Printf("✅ 心跳存储已关闭")
	return nil
}

func (hs *HeartbeatStore) getCollectionDB(collectionName string) (*pebble.DB, error) {
	if hs.collectionMgr == nil {
		return nil, fmt.Errorf("集合管理器未初始化")
	}
	return hs.collectionMgr.GetCollection(collectionName)
}

func buildKey(id string) []byte {
	return []byte(id)
}

// SaveHeartbeat 保存心跳样本（客户端写入的镜像）
func (hs *HeartbeatStore) SaveHeartbeat(sample *models.HeartbeatSample) error {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	if sample == nil || sample.SubjectUserID == "" {
		return fmt.Errorf("心跳样本的用户ID不能为空")
	}

	db, err := hs.getCollectionDB(CollectionLiveHeartbeats)
	if err != nil {
		return fmt.Errorf("获取心跳集合数据库失败: %w", err)
	}

	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("序列化心跳样本失败: %w", err)
	}

	if err := db.Set(buildKey(sample.SubjectUserID), data, pebble.Sync); err != nil {
		return fmt.Errorf("保存心跳样本失败: %w", err)
	}
	return nil
}

// GetHeartbeat 读取心跳样本，不存在时返回 nil
func (hs *HeartbeatStore) GetHeartbeat(userId string) (*models.HeartbeatSample, error) {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	if userId == "" {
		return nil, fmt.Errorf("用户ID不能为空")
	}

	db, err := hs.getCollectionDB(CollectionLiveHeartbeats)
	if err != nil {
		return nil, fmt.Errorf("获取心跳集合数据库失败: %w", err)
	}

	value, closer, err := db.Get(buildKey(userId))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("读取心跳样本失败: %w", err)
	}
	defer closer.Close()

	var sample models.HeartbeatSample
	if err := json.Unmarshal(value, &sample); err != nil {
		return nil, fmt.Errorf("反序列化心跳样本失败: %w", err)
	}
	return &sample, nil
}

// MarkNotificationSent 回写最近一次通知时间
// set-if-present：样本已被删除时不落库，保持幂等
func (hs *HeartbeatStore) MarkNotificationSent(userId string, sentAt int64) error {
	sample, err := hs.GetHeartbeat(userId)
	if err != nil {
		return err
	}
	if sample == nil {
		return nil
	}

	sample.LastNotificationSent = sentAt
	return hs.SaveHeartbeat(sample)
}

// DeleteHeartbeat 删除心跳样本（delete-if-exists）
func (hs *HeartbeatStore) DeleteHeartbeat(userId string) error {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	db, err := hs.getCollectionDB(CollectionLiveHeartbeats)
	if err != nil {
		return fmt.Errorf("获取心跳集合数据库失败: %w", err)
	}
	if err := db.Delete(buildKey(userId), pebble.Sync); err != nil {
		return fmt.Errorf("删除心跳样本失败: %w", err)
	}
	return nil
}

// SaveTrigger 保存通知触发记录
func (hs *HeartbeatStore) SaveTrigger(trigger *models.NotificationTrigger) error {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	if trigger == nil || trigger.SubjectUserID == "" {
		return fmt.Errorf("触发记录的用户ID不能为空")
	}

	db, err := hs.getCollectionDB(CollectionTriggers)
	if err != nil {
		return fmt.Errorf("获取触发集合数据库失败: %w", err)
	}

	data, err := json.Marshal(trigger)
	if err != nil {
		return fmt.Errorf("序列化触发记录失败: %w", err)
	}

	if err := db.Set(buildKey(trigger.SubjectUserID), data, pebble.Sync); err != nil {
		return fmt.Errorf("保存触发记录失败: %w", err)
	}
	return nil
}

// GetTrigger 读取触发记录，不存在时返回 nil
func (hs *HeartbeatStore) GetTrigger(userId string) (*models.NotificationTrigger, error) {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	db, err := hs.getCollectionDB(CollectionTriggers)
	if err != nil {
		return nil, fmt.Errorf("获取触发集合数据库失败: %w", err)
	}

	value, closer, err := db.Get(buildKey(userId))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("读取触发记录失败: %w", err)
	}
	defer closer.Close()

	var trigger models.NotificationTrigger
	if err := json.Unmarshal(value, &trigger); err != nil {
		return nil, fmt.Errorf("反序列化触发记录失败: %w", err)
	}
	return &trigger, nil
}

// DeleteTrigger 幂等删除触发记录
// 处理完成后必须调用，不存在时同样返回成功
func (hs *HeartbeatStore) DeleteTrigger(userId string) error {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	db, err := hs.getCollectionDB(CollectionTriggers)
	if err != nil {
		return fmt.Errorf("获取触发集合数据库失败: %w", err)
	}
	if err := db.Delete(buildKey(userId), pebble.Sync); err != nil {
		return fmt.Errorf("删除触发记录失败: %w", err)
	}
	return nil
}

// StaleHeartbeatKeys 扫描快照中时间戳早于 olderThan 的心跳记录键
func (hs *HeartbeatStore) StaleHeartbeatKeys(olderThan int64) ([]string, error) {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	db, err := hs.getCollectionDB(CollectionLiveHeartbeats)
	if err != nil {
		return nil, fmt.Errorf("获取心跳集合数据库失败: %w", err)
	}

	iter, err := db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("创建迭代器失败: %w", err)
	}
	defer iter.Close()

	var keys []string
	for iter.First(); iter.Valid(); iter.Next() {
		var sample models.HeartbeatSample
		if err := json.Unmarshal(iter.Value(), &sample); err != nil {
			log.Printf("⚠️ 跳过解析失败的心跳记录: %s, 错误: %v", string(iter.Key()), err)
			continue
		}
		if sample.Timestamp < olderThan {
			keys = append(keys, string(iter.Key()))
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("扫描心跳集合失败: %w", err)
	}
	return keys, nil
}

// StaleTriggerKeys 扫描快照中触发时间早于 olderThan 的触发记录键
func (hs *HeartbeatStore) StaleTriggerKeys(olderThan int64) ([]string, error) {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	db, err := hs.getCollectionDB(CollectionTriggers)
	if err != nil {
		return nil, fmt.Errorf("获取触发集合数据库失败: %w", err)
	}

	iter, err := db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("创建迭代器失败: %w", err)
	}
	defer iter.Close()

	var keys []string
	for iter.First(); iter.Valid(); iter.Next() {
		var trigger models.NotificationTrigger
		if err := json.Unmarshal(iter.Value(), &trigger); err != nil {
			log.Printf("⚠️ 跳过解析失败的触发记录: %s, 错误: %v", string(iter.Key()), err)
			continue
		}
		if trigger.TriggeredAt < olderThan {
			keys = append(keys, string(iter.Key()))
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("扫描触发集合失败: %w", err)
	}
	return keys, nil
}

// DeleteHeartbeats 单批删除心跳记录
func (hs *HeartbeatStore) DeleteHeartbeats(keys []string) error {
	return hs.batchDelete(CollectionLiveHeartbeats, keys)
}

// DeleteTriggers 单批删除触发记录
func (hs *HeartbeatStore) DeleteTriggers(keys []string) error {
	return hs.batchDelete(CollectionTriggers, keys)
}

// batchDelete 将整组删除合并为一次批量提交
func (hs *HeartbeatStore) batchDelete(collectionName string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	hs.mu.RLock()
	defer hs.mu.RUnlock()

	db, err := hs.getCollectionDB(collectionName)
	if err != nil {
		return fmt.Errorf("获取集合 %s 数据库失败: %w", collectionName, err)
	}

	batch := db.NewBatch()
	defer batch.Close()

	for _, key := range keys {
		if err := batch.Delete(buildKey(key), nil); err != nil {
			return fmt.Errorf("批量删除暂存失败: %w", err)
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("批量删除提交失败: %w", err)
	}

	log.Printf("✅ 集合 %s 批量删除 %d 条记录", collectionName, len(keys))
	return nil
}
