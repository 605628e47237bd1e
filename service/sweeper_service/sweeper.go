package sweeper_service

import (
	"fmt"
	"log"
	"time"

	"heartlink-service/tool"
)

// StaleScanner 过期记录的扫描与批量删除接口
type StaleScanner interface {
	StaleHeartbeatKeys(olderThan int64) ([]string, error)
	StaleTriggerKeys(olderThan int64) ([]string, error)
	DeleteHeartbeats(keys []string) error
	DeleteTriggers(keys []string) error
}

// SweepReport 一次清扫的结果
type SweepReport struct {
	HeartbeatsDeleted int
	TriggersDeleted   int
	Duration          time.Duration
}

// Sweeper 留存清扫器
// 每天跑一次：扫出时间戳早于留存窗口的心跳样本和触发记录，
// 每个集合各执行一次批量删除。扫描快照之后写入的记录不在本轮
// 删除集里，留给下一轮，无需与实时写入加锁。
type Sweeper struct {
	scanner     StaleScanner
	retentionMs int64
}

// NewSweeper 创建清扫器，retentionMs 为留存窗口（毫秒）
func NewSweeper(scanner StaleScanner, retentionMs int64) *Sweeper {
	return &Sweeper{
		scanner:     scanner,
		retentionMs: retentionMs,
	}
}

// Sweep 执行一次清扫
func (s *Sweeper) Sweep() (*SweepReport, error) {
	startTime := time.Now()
	cutoff := tool.MakeTimestamp() - s.retentionMs

	heartbeatKeys, err := s.scanner.StaleHeartbeatKeys(cutoff)
	if err != nil {
		return nil, fmt.Errorf("scan stale heartbeats: %w", err)
	}

	triggerKeys, err := s.scanner.StaleTriggerKeys(cutoff)
	if err != nil {
		return nil, fmt.Errorf("scan stale triggers: %w", err)
	}

	if len(heartbeatKeys) > 0 {
		if err := s.scanner.DeleteHeartbeats(heartbeatKeys); err != nil {
			return nil, fmt.Errorf("delete stale heartbeats: %w", err)
		}
	}
	if len(triggerKeys) > 0 {
		if err := s.scanner.DeleteTriggers(triggerKeys); err != nil {
			return nil, fmt.Errorf("delete stale triggers: %w", err)
		}
	}

	report := &SweepReport{
		HeartbeatsDeleted: len(heartbeatKeys),
		TriggersDeleted:   len(triggerKeys),
		Duration:          time.Since(startTime),
	}

	log.Printf("🧹 留存清扫完成 heartbeats=%d triggers=%d cutoff=%s duration=%v",
		report.HeartbeatsDeleted, report.TriggersDeleted, tool.MakeDate(cutoff), report.Duration)

	return report, nil
}
