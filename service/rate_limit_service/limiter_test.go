package rate_limit_service

import (
	"testing"

	"heartlink-service/models"
	"heartlink-service/service/heartbeat_store"
	"heartlink-service/tool"
)

func newTestStore(t *testing.T) *heartbeat_store.HeartbeatStore {
	t.Helper()

	store := heartbeat_store.NewHeartbeatStore(&heartbeat_store.Config{
		DBPath: t.TempDir(),
	})
	if err := store.Initialize(); err != nil {
		t.Fatalf("initialize heartbeat store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestAllowWithoutSample(t *testing.T) {
	store := newTestStore(t)
	limiter := NewLimiter(store, 300000)

	// 从未有样本的用户直接放行
	if !limiter.Allow("user-cold") {
		t.Error("expected allow for user without sample")
	}
}

func TestAllowWithoutSentTimestamp(t *testing.T) {
	store := newTestStore(t)
	limiter := NewLimiter(store, 300000)

	err := store.SaveHeartbeat(&models.HeartbeatSample{
		SubjectUserID: "user-a",
		Bpm:           72,
		Timestamp:     tool.MakeTimestamp(),
	})
	if err != nil {
		t.Fatalf("save heartbeat: %v", err)
	}

	if !limiter.Allow("user-a") {
		t.Error("expected allow when lastNotificationSent is unset")
	}
}

func TestCooldownWindow(t *testing.T) {
	store := newTestStore(t)
	limiter := NewLimiter(store, 300000)

	now := tool.MakeTimestamp()
	err := store.SaveHeartbeat(&models.HeartbeatSample{
		SubjectUserID: "user-b",
		Bpm:           95,
		Timestamp:     now,
	})
	if err != nil {
		t.Fatalf("save heartbeat: %v", err)
	}

	if err := limiter.MarkSent("user-b"); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	// 刚刚发送过，窗口内必须拒绝
	if limiter.Allow("user-b") {
		t.Error("expected deny inside cooldown window")
	}

	// 把发送时间回拨到窗口之外，应重新放行
	err = store.MarkNotificationSent("user-b", now-300001)
	if err != nil {
		t.Fatalf("rewind sent timestamp: %v", err)
	}
	if !limiter.Allow("user-b") {
		t.Error("expected allow after cooldown elapsed")
	}

	t.Logf("✅ cooldown window %dms enforced", limiter.CooldownMs())
}

func TestMarkSentPreservesSample(t *testing.T) {
	store := newTestStore(t)
	limiter := NewLimiter(store, 300000)

	err := store.SaveHeartbeat(&models.HeartbeatSample{
		SubjectUserID: "user-c",
		Bpm:           110,
		Timestamp:     tool.MakeTimestamp(),
	})
	if err != nil {
		t.Fatalf("save heartbeat: %v", err)
	}

	if err := limiter.MarkSent("user-c"); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	sample, err := store.GetHeartbeat("user-c")
	if err != nil {
		t.Fatalf("get heartbeat: %v", err)
	}
	if sample == nil {
		t.Fatal("sample disappeared after MarkSent")
	}
	if sample.Bpm != 110 {
		t.Errorf("bpm should survive MarkSent, got %d", sample.Bpm)
	}
	if sample.LastNotificationSent == 0 {
		t.Error("lastNotificationSent should be set")
	}
}
