package schedule_service

import (
	"testing"
	"time"

	"heartlink-service/tool"
)

func TestNextMinuteOfHour(t *testing.T) {
	loc := time.UTC

	// 当前 10:30，59分触发点在同一小时内
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, loc)
	next := tool.NextMinuteOfHour(now, 59)
	want := time.Date(2025, 6, 1, 10, 59, 0, 0, loc)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}

	// 当前 10:59 整，已到触发点，顺延到下一小时
	now = time.Date(2025, 6, 1, 10, 59, 0, 0, loc)
	next = tool.NextMinuteOfHour(now, 59)
	want = time.Date(2025, 6, 1, 11, 59, 0, 0, loc)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestNextHourOfDay(t *testing.T) {
	// 当前 UTC 02:00，4点触发点在今天
	now := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	next := tool.NextHourOfDay(now, 4)
	want := time.Date(2025, 6, 1, 4, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}

	// 当前 UTC 05:00，已过今天的4点，顺延到明天
	now = time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC)
	next = tool.NextHourOfDay(now, 4)
	want = time.Date(2025, 6, 2, 4, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestSchedulerStop(t *testing.T) {
	scheduler := NewScheduler()

	ran := make(chan struct{}, 1)
	scheduler.RunHourlyAtMinute("test-job", 59, func() {
		ran <- struct{}{}
	})

	// 立即停止，任务循环应干净退出
	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}

	select {
	case <-ran:
		t.Error("job should not have run")
	default:
	}
}

func TestSchedulerJobPanicRecovered(t *testing.T) {
	scheduler := NewScheduler()

	// runJob 的 panic 不应冒泡
	scheduler.runJob("panicky", func() {
		panic("boom")
	})
}
