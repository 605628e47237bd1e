package tool

import (
	"time"
)

const hourTime = 3600 * 1000

var (
	l, _ = time.LoadLocation("UTC")
)

func MakeTimestamp() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

func MakeDate(timestamp int64) string {
	timeFormat := "2006-01-02 15:04:05(UTC)"
	return time.Unix(timestamp/1000, 0).In(l).Format(timeFormat)
}

// HourBucket 返回毫秒时间戳所属的整点桶（epoch 小时序号）
// 排行榜进程缓存按整点失效，用它作为桶标记
func HourBucket(timestamp int64) int64 {
	return timestamp / hourTime
}

// NextMinuteOfHour 计算下一次整点后第 minute 分钟的时刻
// 例如 minute=59：每小时的 59 分触发一次排行榜同步
func NextMinuteOfHour(now time.Time, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(time.Hour)
	}
	return next
}

// NextHourOfDay 计算下一次每天 hour 点（UTC）的时刻
func NextHourOfDay(now time.Time, hour int) time.Time {
	nowUTC := now.In(l)
	next := time.Date(nowUTC.Year(), nowUTC.Month(), nowUTC.Day(), hour, 0, 0, 0, l)
	if !next.After(nowUTC) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
