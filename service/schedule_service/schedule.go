package schedule_service

import (
	"log"
	"sync"
	"time"

	"heartlink-service/tool"
)

// Scheduler 进程内定时任务调度器
// 用一次性 timer 对齐到下一个触发点再重置，避免 ticker 的相位漂移
type Scheduler struct {
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler 创建调度器
func NewScheduler() *Scheduler {
	return &Scheduler{
		stopCh: make(chan struct{}),
	}
}

// RunHourlyAtMinute 每小时的第 minute 分钟执行一次 job
func (s *Scheduler) RunHourlyAtMinute(name string, minute int, job func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			next := tool.NextMinuteOfHour(time.Now(), minute)
			log.Printf("⏰ 任务 %s 下次执行: %s", name, next.Format("2006-01-02 15:04:05"))

			timer := time.NewTimer(time.Until(next))
			select {
			case <-timer.C:
				s.runJob(name, job)
			case <-s.stopCh:
				timer.Stop()
				return
			}
		}
	}()
}

// RunDailyAtHour 每天 UTC hour 点执行一次 job
func (s *Scheduler) RunDailyAtHour(name string, hour int, job func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			next := tool.NextHourOfDay(time.Now(), hour)
			log.Printf("⏰ 任务 %s 下次执行: %s", name, next.Format("2006-01-02 15:04:05(UTC)"))

			timer := time.NewTimer(time.Until(next))
			select {
			case <-timer.C:
				s.runJob(name, job)
			case <-s.stopCh:
				timer.Stop()
				return
			}
		}
	}()
}

// runJob 执行任务，panic 只影响本轮
func (s *Scheduler) runJob(name string, job func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Panic recovered in scheduled job %s: %v", name, r)
		}
	}()

	startTime := time.Now()
	job()
	log.Printf("✅ 任务 %s 执行完成 duration=%v", name, time.Since(startTime))
}

// Stop 停止所有任务循环并等待退出
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}
