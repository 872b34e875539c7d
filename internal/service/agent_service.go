package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"offio/backend/internal/activity"
	"offio/backend/internal/authz"
	"offio/backend/internal/dto"
	"offio/backend/internal/model"
	pkgerrors "offio/backend/pkg/errors"
	"offio/backend/pkg/metrics"
	"offio/backend/pkg/objectstore"
)

// ── session errors (agent side) ──

var (
	ErrSessionNotFound     = pkgerrors.New(pkgerrors.KindNotFound, "session not found")
	ErrAlreadyRecording    = pkgerrors.New(pkgerrors.KindAlreadyRecording, "a recording session is already open")
	ErrSessionNotRecording = pkgerrors.New(pkgerrors.KindInvalidState, "session is not recording")
	ErrInvalidFileKey      = pkgerrors.New(pkgerrors.KindValidation, "file key does not belong to this session")
)

const defaultScreenshotContentType = "image/png"

// ObjectStore screenshot object storage
type ObjectStore interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	PublicURL(key string) string
}

// AgentService desktop agent operations
type AgentService interface {
	StartSession(ctx context.Context, p authz.Principal, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error)
	AppendActivity(ctx context.Context, p authz.Principal, req *dto.AppendActivityRequest) (*dto.AppendActivityResponse, error)
	EndSession(ctx context.Context, p authz.Principal, req *dto.EndSessionRequest) (*dto.EndSessionResponse, error)
	RequestScreenshotUpload(ctx context.Context, p authz.Principal, req *dto.ScreenshotUploadRequest) (*dto.ScreenshotUploadResponse, error)
	RecordScreenshot(ctx context.Context, p authz.Principal, req *dto.RecordScreenshotRequest) (*dto.RecordScreenshotResponse, error)
}

type agentService struct {
	*environment
}

// NewAgentService creates AgentService
func NewAgentService(env *environment) AgentService {
	return &agentService{environment: env}
}

// ────────────────────── StartSession ──────────────────────

func (s *agentService) StartSession(ctx context.Context, p authz.Principal, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error) {
	user, err := loadUserInCompany(ctx, s.repo, p, p.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// fast path; the partial unique index is the real guard
	if _, err := s.repo.Session.GetRecordingByUser(ctx, user.UserID); err == nil {
		return nil, ErrAlreadyRecording
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	company, err := s.repo.Company.GetByID(ctx, user.CompanyID)
	if err != nil {
		s.logger.Error("load company failed", zap.String("company_id", user.CompanyID), zap.Error(err))
		return nil, err
	}

	now := s.clock()
	session := &model.WorkSession{
		UserID:    user.UserID,
		Date:      s.today(),
		StartTime: now,
		Status:    model.SessionRecording,
	}
	if d := req.DeviceInfo; d != nil {
		session.DeviceOS = strPtr(d.OS)
		session.DeviceHostname = strPtr(d.Hostname)
		session.DeviceIP = strPtr(d.IP)
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyRecording
		}
		s.logger.Error("create session failed", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}

	metrics.SessionsStarted.Inc()
	s.logger.Info("session started",
		zap.String("session_id", session.SessionID),
		zap.String("user_id", user.UserID),
	)

	return &dto.StartSessionResponse{
		SessionID:          session.SessionID,
		StartTime:          session.StartTime,
		ScreenshotInterval: company.ScreenshotInterval,
	}, nil
}

// ────────────────────── AppendActivity ──────────────────────

func (s *agentService) AppendActivity(ctx context.Context, p authz.Principal, req *dto.AppendActivityRequest) (*dto.AppendActivityResponse, error) {
	session, err := s.loadAgentSession(ctx, p, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionRecording {
		return nil, ErrSessionNotRecording
	}

	duration := req.DurationSeconds
	if duration <= 0 {
		duration = int(req.EndTime.Sub(req.StartTime) / time.Second)
	}
	if duration <= 0 {
		duration = activity.WindowSeconds
	}

	log := &model.ActivityLog{
		SessionID:       session.SessionID,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationSeconds: duration,
		KeyboardCount:   req.KeyboardCount,
		KeyPressCount:   req.KeyPressCount,
		MouseClickCount: req.MouseClickCount,
		MouseDistance:   req.MouseDistance,
		ActionCount:     req.ActionCount,
	}

	usages := make([]model.WindowUsage, 0, len(req.Windows))
	for _, w := range req.Windows {
		name := strings.TrimSpace(w.Name)
		if name == "" {
			continue
		}
		usages = append(usages, model.WindowUsage{
			ProgramName:  name,
			FocusSeconds: max(0, w.FocusSeconds),
		})
	}

	if err := s.repo.Activity.Append(ctx, log, usages); err != nil {
		s.logger.Error("append activity failed", zap.String("session_id", session.SessionID), zap.Error(err))
		return nil, err
	}

	metrics.ActivitySamples.Inc()
	return &dto.AppendActivityResponse{ActivityLogID: log.ID}, nil
}

// ────────────────────── EndSession ──────────────────────

func (s *agentService) EndSession(ctx context.Context, p authz.Principal, req *dto.EndSessionRequest) (*dto.EndSessionResponse, error) {
	session, err := s.loadAgentSession(ctx, p, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionRecording {
		return nil, ErrSessionNotRecording
	}

	active, err := s.repo.Activity.SumActiveSeconds(ctx, session.SessionID)
	if err != nil {
		s.logger.Error("sum active seconds failed", zap.String("session_id", session.SessionID), zap.Error(err))
		return nil, err
	}

	now := s.clock()
	session.EndTime = &now
	session.Status = model.SessionEditing
	session.TotalWorkSeconds = max(0, int(now.Sub(session.StartTime)/time.Second))
	session.TotalActiveSeconds = active

	if err := s.repo.Session.Update(ctx, session); err != nil {
		s.logger.Error("end session failed", zap.String("session_id", session.SessionID), zap.Error(err))
		return nil, err
	}

	metrics.SessionsEnded.Inc()
	s.logger.Info("session ended",
		zap.String("session_id", session.SessionID),
		zap.Int("total_work_seconds", session.TotalWorkSeconds),
		zap.Int("total_active_seconds", session.TotalActiveSeconds),
	)

	return &dto.EndSessionResponse{
		SessionID:          session.SessionID,
		Status:             string(session.Status),
		EndTime:            now,
		TotalWorkSeconds:   session.TotalWorkSeconds,
		TotalActiveSeconds: session.TotalActiveSeconds,
	}, nil
}

// ────────────────────── Screenshots ──────────────────────

func (s *agentService) RequestScreenshotUpload(ctx context.Context, p authz.Principal, req *dto.ScreenshotUploadRequest) (*dto.ScreenshotUploadResponse, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	session, err := s.loadAgentSession(ctx, p, req.SessionID)
	if err != nil {
		return nil, err
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = defaultScreenshotContentType
	}

	key := objectstore.ScreenshotKey(p.CompanyID, session.UserID, session.SessionID, req.CapturedAt)
	uploadURL, err := s.store.PresignUpload(ctx, key, contentType)
	if err != nil {
		s.logger.Error("presign screenshot upload failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	return &dto.ScreenshotUploadResponse{
		UploadURL: uploadURL,
		PublicURL: s.store.PublicURL(key),
		Key:       key,
	}, nil
}

func (s *agentService) RecordScreenshot(ctx context.Context, p authz.Principal, req *dto.RecordScreenshotRequest) (*dto.RecordScreenshotResponse, error) {
	session, err := s.loadAgentSession(ctx, p, req.SessionID)
	if err != nil {
		return nil, err
	}

	prefix := "screenshots/" + p.CompanyID + "/" + session.UserID + "/"
	if !strings.HasPrefix(req.FileKey, prefix) || !strings.Contains(req.FileKey, "/"+session.SessionID+"/") {
		return nil, ErrInvalidFileKey
	}

	shot := &model.Screenshot{
		SessionID:     session.SessionID,
		ActivityLogID: req.ActivityLogID,
		CapturedAt:    req.CapturedAt,
		FileKey:       req.FileKey,
		FileSize:      req.FileSize,
	}
	if err := s.repo.Screenshot.Create(ctx, shot); err != nil {
		s.logger.Error("record screenshot failed", zap.String("session_id", session.SessionID), zap.Error(err))
		return nil, err
	}

	metrics.ScreenshotsRegistered.Inc()
	return &dto.RecordScreenshotResponse{ScreenshotID: shot.ID, FileKey: shot.FileKey}, nil
}

// loadAgentSession the agent may only touch its own user's sessions
func (s *agentService) loadAgentSession(ctx context.Context, p authz.Principal, id string) (*model.WorkSession, error) {
	session, err := loadSession(ctx, s.environment, p, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeOwner(p, sessionSubject(session)); err != nil {
		return nil, err
	}
	return session, nil
}
