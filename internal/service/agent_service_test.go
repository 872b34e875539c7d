package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"offio/backend/internal/authz"
	"offio/backend/internal/dto"
	"offio/backend/internal/model"
	pkgerrors "offio/backend/pkg/errors"
)

type fakeStore struct {
	uploads []string
}

func (f *fakeStore) PresignUpload(_ context.Context, key, _ string) (string, error) {
	f.uploads = append(f.uploads, key)
	return "https://upload.test/" + key + "?sig=1", nil
}

func (f *fakeStore) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://download.test/" + key + "?sig=1", nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func TestAgentService_StartSession(t *testing.T) {
	env, m := newTestEnv()
	svc := NewAgentService(env)
	ctx := context.Background()

	resp, err := svc.StartSession(ctx, principalOf(m, "w1"), &dto.StartSessionRequest{
		DeviceInfo: &dto.DeviceInfo{OS: "macOS", Hostname: "mbp"},
	})
	if err != nil {
		t.Fatalf("StartSession should succeed: %v", err)
	}
	if resp.ScreenshotInterval != 300 {
		t.Errorf("expected company interval 300, got %d", resp.ScreenshotInterval)
	}
	if !resp.StartTime.Equal(testNow) {
		t.Errorf("expected start %v, got %v", testNow, resp.StartTime)
	}

	stored := m.sessions.sessions[resp.SessionID]
	if stored.Status != model.SessionRecording {
		t.Errorf("expected recording, got %s", stored.Status)
	}
	if !stored.Date.Equal(day(2025, time.June, 16)) {
		t.Errorf("expected session date 2025-06-16, got %v", stored.Date)
	}
	if stored.DeviceOS == nil || *stored.DeviceOS != "macOS" {
		t.Error("device info should be stored")
	}

	// second clock-in while the first is still open
	if _, err := svc.StartSession(ctx, principalOf(m, "w1"), &dto.StartSessionRequest{}); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("expected ErrAlreadyRecording, got %v", err)
	}
	// other users are unaffected
	if _, err := svc.StartSession(ctx, principalOf(m, "w2"), &dto.StartSessionRequest{}); err != nil {
		t.Errorf("another user should be able to start: %v", err)
	}
}

func TestAgentService_StartSession_ConcurrentStart(t *testing.T) {
	env, m := newTestEnv()
	svc := NewAgentService(env)
	ctx := context.Background()
	seedSession(m, "s-open", "w1", model.SessionRecording)

	// the lookup misses, so only the unique index catches the second session
	m.sessions.missRecordingLookup = true

	_, err := svc.StartSession(ctx, principalOf(m, "w1"), &dto.StartSessionRequest{})
	if !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("expected ErrAlreadyRecording, got %v", err)
	}
	if pkgerrors.KindOf(err) != pkgerrors.KindAlreadyRecording {
		t.Errorf("expected already-recording kind, got %s", pkgerrors.KindOf(err))
	}
	if len(m.sessions.sessions) != 1 {
		t.Errorf("no second session should be stored, got %d", len(m.sessions.sessions))
	}
}

func TestAgentService_StartSession_InactiveUser(t *testing.T) {
	env, m := newTestEnv()
	m.users.users["w1"].IsActive = false

	_, err := NewAgentService(env).StartSession(context.Background(), principalOf(m, "w1"), &dto.StartSessionRequest{})
	if !errors.Is(err, ErrUserInactive) {
		t.Errorf("expected ErrUserInactive, got %v", err)
	}
}

func TestAgentService_AppendActivity(t *testing.T) {
	env, m := newTestEnv()
	svc := NewAgentService(env)
	ctx := context.Background()
	seedSession(m, "s1", "w1", model.SessionRecording)

	start := testNow.Add(-time.Minute)
	resp, err := svc.AppendActivity(ctx, principalOf(m, "w1"), &dto.AppendActivityRequest{
		SessionID:     "s1",
		StartTime:     start,
		EndTime:       testNow,
		KeyPressCount: 12,
		Windows: []dto.WindowUsageInput{
			{Name: "  Code  ", FocusSeconds: 40},
			{Name: "", FocusSeconds: 10},
			{Name: "Slack", FocusSeconds: -5},
		},
	})
	if err != nil {
		t.Fatalf("AppendActivity should succeed: %v", err)
	}
	if resp.ActivityLogID == 0 {
		t.Error("expected an activity log id")
	}

	log := m.activity.logs[0]
	if log.DurationSeconds != 60 {
		t.Errorf("duration should default to end-start, got %d", log.DurationSeconds)
	}
	if len(m.activity.usages) != 2 {
		t.Fatalf("expected 2 usages (blank name dropped), got %d", len(m.activity.usages))
	}
	if m.activity.usages[0].ProgramName != "Code" {
		t.Errorf("program name should be trimmed, got %q", m.activity.usages[0].ProgramName)
	}
	if m.activity.usages[1].FocusSeconds != 0 {
		t.Errorf("negative focus should clamp to 0, got %d", m.activity.usages[1].FocusSeconds)
	}
}

func TestAgentService_AppendActivity_Rejections(t *testing.T) {
	env, m := newTestEnv()
	svc := NewAgentService(env)
	ctx := context.Background()
	seedSession(m, "s-open", "w1", model.SessionRecording)
	seedSession(m, "s-ended", "w1", model.SessionEditing)

	req := func(id string) *dto.AppendActivityRequest {
		return &dto.AppendActivityRequest{SessionID: id, StartTime: testNow.Add(-time.Minute), EndTime: testNow}
	}

	tests := []struct {
		name   string
		caller string
		id     string
		want   error
	}{
		{"ended session", "w1", "s-ended", ErrSessionNotRecording},
		{"other user's session", "w2", "s-open", authz.ErrNotOwner},
		{"other company", "x1", "s-open", ErrSessionNotFound},
		{"unknown session", "w1", "missing", ErrSessionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AppendActivity(ctx, principalOf(m, tt.caller), req(tt.id))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAgentService_EndSession_ComputesTotals(t *testing.T) {
	env, m := newTestEnv()
	svc := NewAgentService(env)
	ctx := context.Background()
	s := seedSession(m, "s1", "w1", model.SessionRecording)
	seedSamples(m, "s1", s.StartTime, 3)
	m.activity.logs[1].IsExcluded = true

	resp, err := svc.EndSession(ctx, principalOf(m, "w1"), &dto.EndSessionRequest{SessionID: "s1"})
	if err != nil {
		t.Fatalf("EndSession should succeed: %v", err)
	}
	if resp.Status != string(model.SessionEditing) {
		t.Errorf("expected editing, got %s", resp.Status)
	}
	if resp.TotalWorkSeconds != 7200 {
		t.Errorf("expected 7200 work seconds, got %d", resp.TotalWorkSeconds)
	}
	if resp.TotalActiveSeconds != 120 {
		t.Errorf("excluded samples must not count, expected 120, got %d", resp.TotalActiveSeconds)
	}

	stored := m.sessions.sessions["s1"]
	if stored.EndTime == nil || !stored.EndTime.Equal(testNow) {
		t.Error("end time should be now")
	}
	if stored.Version != 2 {
		t.Errorf("version should be bumped, got %d", stored.Version)
	}

	if _, err := svc.EndSession(ctx, principalOf(m, "w1"), &dto.EndSessionRequest{SessionID: "s1"}); !errors.Is(err, ErrSessionNotRecording) {
		t.Errorf("ending twice should fail with ErrSessionNotRecording, got %v", err)
	}
}

func TestAgentService_Screenshots(t *testing.T) {
	env, m := newTestEnv()
	ctx := context.Background()
	seedSession(m, "s1", "w1", model.SessionRecording)

	// no object store configured
	_, err := NewAgentService(env).RequestScreenshotUpload(ctx, principalOf(m, "w1"), &dto.ScreenshotUploadRequest{SessionID: "s1", CapturedAt: testNow})
	if !errors.Is(err, ErrStoreDisabled) {
		t.Errorf("expected ErrStoreDisabled, got %v", err)
	}

	store := &fakeStore{}
	env.store = store
	svc := NewAgentService(env)

	up, err := svc.RequestScreenshotUpload(ctx, principalOf(m, "w1"), &dto.ScreenshotUploadRequest{SessionID: "s1", CapturedAt: testNow})
	if err != nil {
		t.Fatalf("RequestScreenshotUpload should succeed: %v", err)
	}
	if !strings.HasPrefix(up.Key, "screenshots/c1/w1/2025-06-16/s1/") {
		t.Errorf("unexpected key %q", up.Key)
	}
	if !strings.HasPrefix(up.UploadURL, "https://upload.test/") {
		t.Errorf("unexpected upload url %q", up.UploadURL)
	}

	rec, err := svc.RecordScreenshot(ctx, principalOf(m, "w1"), &dto.RecordScreenshotRequest{
		SessionID:  "s1",
		CapturedAt: testNow,
		FileKey:    up.Key,
		FileSize:   ptr(int64(2048)),
	})
	if err != nil {
		t.Fatalf("RecordScreenshot should succeed: %v", err)
	}
	if m.screenshots.shots[rec.ScreenshotID].FileKey != up.Key {
		t.Error("screenshot metadata should be stored")
	}

	_, err = svc.RecordScreenshot(ctx, principalOf(m, "w1"), &dto.RecordScreenshotRequest{
		SessionID:  "s1",
		CapturedAt: testNow,
		FileKey:    "screenshots/c1/w2/2025-06-16/s1/1.png",
	})
	if !errors.Is(err, ErrInvalidFileKey) {
		t.Errorf("foreign key should be rejected, got %v", err)
	}
}
