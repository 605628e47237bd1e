package dispatch_center

import (
	"context"
	"fmt"
	"testing"

	"heartlink-service/models"
	"heartlink-service/service/heartbeat_store"
	"heartlink-service/service/push_service"
	"heartlink-service/service/rate_limit_service"
	"heartlink-service/service/stream_service"
	"heartlink-service/tool"
)

// fakeResolver 内存版的主存储读取实现
type fakeResolver struct {
	users     map[string]*models.UserRecord
	followers map[string][]models.FollowerRecord
	failWith  error
}

func (f *fakeResolver) UserByID(userId string) (*models.UserRecord, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.users[userId], nil
}

func (f *fakeResolver) FollowersOf(userId string) ([]models.FollowerRecord, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.followers[userId], nil
}

// fakeSender 记录每次群发的推送实现
type fakeSender struct {
	calls    []fakeSendCall
	failWith error
}

type fakeSendCall struct {
	tokens      []string
	displayName string
	bpm         int64
}

func (f *fakeSender) SendHeartbeatUpdate(ctx context.Context, tokens []string, displayName string, bpm int64) (*push_service.DispatchReport, error) {
	f.calls = append(f.calls, fakeSendCall{tokens: tokens, displayName: displayName, bpm: bpm})
	if f.failWith != nil {
		return nil, f.failWith
	}

	results := make([]*push_service.TokenResult, 0, len(tokens))
	for _, token := range tokens {
		results = append(results, &push_service.TokenResult{Token: token, Success: true})
	}
	return &push_service.DispatchReport{
		Provider:     "expo",
		TotalTokens:  len(tokens),
		SuccessCount: len(tokens),
		Results:      results,
	}, nil
}

func newTestCenter(t *testing.T, resolver *fakeResolver, sender *fakeSender) (*DispatchCenter, *heartbeat_store.HeartbeatStore) {
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

	gate := rate_limit_service.NewLimiter(store, 300000)
	return NewDispatchCenter(resolver, store, gate, sender), store
}

func heartbeatEvent(userId string, before, after int64) *stream_service.HeartbeatWriteEvent {
	return &stream_service.HeartbeatWriteEvent{
		SubjectUserID: userId,
		BeforeBpm:     before,
		AfterBpm:      after,
		Timestamp:     tool.MakeTimestamp(),
	}
}

// 完整链路：心跳写事件 → 限流放行 → 过滤关注者 → 群发 → 回写冷却时间戳
func TestHeartbeatWriteDispatch(t *testing.T) {
	resolver := &fakeResolver{
		users: map[string]*models.UserRecord{
			"alice": {ID: "alice", DisplayName: "Alice"},
		},
		followers: map[string][]models.FollowerRecord{
			"alice": {
				{SubjectUserID: "alice", FollowerID: "bob", NotificationEnabled: true, DeviceToken: "ExponentPushToken[bob-device]"},
				{SubjectUserID: "alice", FollowerID: "carol", NotificationEnabled: false, DeviceToken: "ExponentPushToken[carol-device]"},
				{SubjectUserID: "alice", FollowerID: "dave", NotificationEnabled: true, DeviceToken: ""},
			},
		},
	}
	sender := &fakeSender{}
	center, store := newTestCenter(t, resolver, sender)

	center.OnHeartbeatWrite(heartbeatEvent("alice", 64, 78))

	if len(sender.calls) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(sender.calls))
	}
	call := sender.calls[0]
	if call.displayName != "Alice" || call.bpm != 78 {
		t.Errorf("unexpected dispatch args: %+v", call)
	}
	// 只有开启通知且有令牌的bob应收到
	if len(call.tokens) != 1 || call.tokens[0] != "ExponentPushToken[bob-device]" {
		t.Errorf("expected only bob's token, got %v", call.tokens)
	}

	sample, err := store.GetHeartbeat("alice")
	if err != nil || sample == nil {
		t.Fatalf("sample should be mirrored: %v", err)
	}
	if sample.LastNotificationSent == 0 {
		t.Error("cooldown timestamp should be written after dispatch")
	}

	t.Logf("✅ dispatched to %v at bpm=%d", call.tokens, call.bpm)
}

// BPM未变化的写事件（比如只回写了冷却时间戳）不产生任何副作用
func TestHeartbeatWriteUnchangedBpm(t *testing.T) {
	resolver := &fakeResolver{users: map[string]*models.UserRecord{}}
	sender := &fakeSender{}
	center, store := newTestCenter(t, resolver, sender)

	center.OnHeartbeatWrite(heartbeatEvent("alice", 78, 78))

	if len(sender.calls) != 0 {
		t.Errorf("unchanged bpm must not dispatch, got %d calls", len(sender.calls))
	}
	sample, _ := store.GetHeartbeat("alice")
	if sample != nil {
		t.Error("unchanged bpm must not mirror the sample")
	}
}

// 冷却窗口内的第二次写事件被限流拦下
func TestHeartbeatWriteCooldown(t *testing.T) {
	resolver := &fakeResolver{
		users: map[string]*models.UserRecord{
			"alice": {ID: "alice", DisplayName: "Alice"},
		},
		followers: map[string][]models.FollowerRecord{
			"alice": {
				{SubjectUserID: "alice", FollowerID: "bob", NotificationEnabled: true, DeviceToken: "ExponentPushToken[bob-device]"},
			},
		},
	}
	sender := &fakeSender{}
	center, _ := newTestCenter(t, resolver, sender)

	center.OnHeartbeatWrite(heartbeatEvent("alice", 64, 78))
	center.OnHeartbeatWrite(heartbeatEvent("alice", 78, 92))

	if len(sender.calls) != 1 {
		t.Errorf("second write inside cooldown must be suppressed, got %d calls", len(sender.calls))
	}
}

// 快速连写：创建事件只建镜像，紧接着的BPM变化推送一次，携带最新值
func TestRapidWritesDispatchOnceWithLatestBpm(t *testing.T) {
	resolver := &fakeResolver{
		users: map[string]*models.UserRecord{
			"u1": {ID: "u1", DisplayName: "U1"},
		},
		followers: map[string][]models.FollowerRecord{
			"u1": {
				{SubjectUserID: "u1", FollowerID: "f1", NotificationEnabled: true, DeviceToken: "ExponentPushToken[f1-device]"},
			},
		},
	}
	sender := &fakeSender{}
	center, _ := newTestCenter(t, resolver, sender)

	center.OnHeartbeatWrite(heartbeatEvent("u1", 0, 72))
	center.OnHeartbeatWrite(heartbeatEvent("u1", 72, 95))

	if len(sender.calls) != 1 {
		t.Fatalf("expected exactly 1 dispatch, got %d", len(sender.calls))
	}
	if sender.calls[0].bpm != 95 {
		t.Errorf("dispatch must carry the latest bpm 95, got %d", sender.calls[0].bpm)
	}
}

// 没有可推送的关注者时不回写冷却时间戳，下一次有效事件仍可推送
func TestNoEligibleFollowersKeepsCooldownOpen(t *testing.T) {
	resolver := &fakeResolver{
		users: map[string]*models.UserRecord{
			"alice": {ID: "alice", DisplayName: "Alice"},
		},
		followers: map[string][]models.FollowerRecord{
			"alice": {
				{SubjectUserID: "alice", FollowerID: "carol", NotificationEnabled: false, DeviceToken: "ExponentPushToken[carol-device]"},
			},
		},
	}
	sender := &fakeSender{}
	center, store := newTestCenter(t, resolver, sender)

	center.OnHeartbeatWrite(heartbeatEvent("alice", 64, 78))

	if len(sender.calls) != 0 {
		t.Errorf("no eligible followers must not dispatch, got %d calls", len(sender.calls))
	}
	sample, err := store.GetHeartbeat("alice")
	if err != nil || sample == nil {
		t.Fatalf("sample should still be mirrored: %v", err)
	}
	if sample.LastNotificationSent != 0 {
		t.Error("skipped dispatch must not start the cooldown window")
	}
}

// 触发事件回读样本取BPM，处理后触发记录必须被删除
func TestTriggerWriteDispatchAndCleanup(t *testing.T) {
	resolver := &fakeResolver{
		users: map[string]*models.UserRecord{
			"alice": {ID: "alice", DisplayName: "Alice"},
		},
		followers: map[string][]models.FollowerRecord{
			"alice": {
				{SubjectUserID: "alice", FollowerID: "bob", NotificationEnabled: true, DeviceToken: "ExponentPushToken[bob-device]"},
			},
		},
	}
	sender := &fakeSender{}
	center, store := newTestCenter(t, resolver, sender)

	err := store.SaveHeartbeat(&models.HeartbeatSample{
		SubjectUserID: "alice",
		Bpm:           101,
		Timestamp:     tool.MakeTimestamp(),
	})
	if err != nil {
		t.Fatalf("save heartbeat: %v", err)
	}

	center.OnTriggerWrite(&stream_service.TriggerWriteEvent{
		SubjectUserID: "alice",
		TriggeredAt:   tool.MakeTimestamp(),
	})

	if len(sender.calls) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(sender.calls))
	}
	if sender.calls[0].bpm != 101 {
		t.Errorf("trigger dispatch should re-read bpm from the sample, got %d", sender.calls[0].bpm)
	}

	trigger, err := store.GetTrigger("alice")
	if err != nil {
		t.Fatalf("get trigger: %v", err)
	}
	if trigger != nil {
		t.Error("trigger record must be deleted after processing")
	}
}

// 推送失败时触发记录同样被删除，事件重试不会造成重复推送
func TestTriggerCleanupOnSendFailure(t *testing.T) {
	resolver := &fakeResolver{
		users: map[string]*models.UserRecord{
			"alice": {ID: "alice", DisplayName: "Alice"},
		},
		followers: map[string][]models.FollowerRecord{
			"alice": {
				{SubjectUserID: "alice", FollowerID: "bob", NotificationEnabled: true, DeviceToken: "ExponentPushToken[bob-device]"},
			},
		},
	}
	sender := &fakeSender{failWith: fmt.Errorf("provider unavailable")}
	center, store := newTestCenter(t, resolver, sender)

	err := store.SaveHeartbeat(&models.HeartbeatSample{
		SubjectUserID: "alice",
		Bpm:           101,
		Timestamp:     tool.MakeTimestamp(),
	})
	if err != nil {
		t.Fatalf("save heartbeat: %v", err)
	}

	center.OnTriggerWrite(&stream_service.TriggerWriteEvent{
		SubjectUserID: "alice",
		TriggeredAt:   tool.MakeTimestamp(),
	})

	trigger, err := store.GetTrigger("alice")
	if err != nil {
		t.Fatalf("get trigger: %v", err)
	}
	if trigger != nil {
		t.Error("trigger record must be deleted even when dispatch fails")
	}

	// 派发失败不回写冷却时间戳
	sample, _ := store.GetHeartbeat("alice")
	if sample.LastNotificationSent != 0 {
		t.Error("failed dispatch must not start the cooldown window")
	}
}

// 删除回声事件不做任何处理
func TestTriggerDeletedEventIgnored(t *testing.T) {
	resolver := &fakeResolver{}
	sender := &fakeSender{}
	center, store := newTestCenter(t, resolver, sender)

	center.OnTriggerWrite(&stream_service.TriggerWriteEvent{
		SubjectUserID: "alice",
		TriggeredAt:   tool.MakeTimestamp(),
		Deleted:       true,
	})

	if len(sender.calls) != 0 {
		t.Errorf("deleted event must be ignored, got %d calls", len(sender.calls))
	}
	trigger, _ := store.GetTrigger("alice")
	if trigger != nil {
		t.Error("deleted event must not mirror a trigger")
	}
}

// 用户不存在是合法的未命中，不是错误
func TestDispatchMissingUser(t *testing.T) {
	resolver := &fakeResolver{users: map[string]*models.UserRecord{}}
	sender := &fakeSender{}
	center, _ := newTestCenter(t, resolver, sender)

	center.OnHeartbeatWrite(heartbeatEvent("ghost", 60, 66))

	if len(sender.calls) != 0 {
		t.Errorf("missing user must not dispatch, got %d calls", len(sender.calls))
	}
}
