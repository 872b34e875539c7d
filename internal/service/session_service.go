package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"offio/backend/internal/activity"
	"offio/backend/internal/authz"
	"offio/backend/internal/dto"
	"offio/backend/internal/model"
	"offio/backend/internal/repository"
	pkgerrors "offio/backend/pkg/errors"
	"offio/backend/pkg/metrics"
)

// ── session errors (console side) ──

var (
	ErrSessionNotEditable  = pkgerrors.New(pkgerrors.KindInvalidState, "session can only be edited before submission")
	ErrSessionNotSubmitted = pkgerrors.New(pkgerrors.KindInvalidState, "only submitted sessions can be reviewed")
	ErrInvalidInterval     = pkgerrors.New(pkgerrors.KindValidation, "interval must be one of 1, 5, 10, 30, 60")
	ErrInvalidRange        = pkgerrors.New(pkgerrors.KindValidation, "range end must be after its start")
	ErrInvalidStatus       = pkgerrors.New(pkgerrors.KindValidation, "unknown status")
	ErrInvalidAction       = pkgerrors.New(pkgerrors.KindValidation, "action must be approve or reject")
	ErrScreenshotNotFound  = pkgerrors.New(pkgerrors.KindNotFound, "screenshot not found")
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// SessionService console-side session operations
type SessionService interface {
	List(ctx context.Context, p authz.Principal, req *dto.SessionListRequest) ([]dto.SessionResponse, int64, error)
	GetDetail(ctx context.Context, p authz.Principal, id string, interval int) (*dto.SessionDetailResponse, error)
	UpdateMemo(ctx context.Context, p authz.Principal, id string, req *dto.UpdateMemoRequest) (*dto.SessionResponse, error)
	ExcludeRange(ctx context.Context, p authz.Principal, id string, req *dto.ExcludeRangeRequest) (*dto.ExcludeRangeResponse, error)
	IncludeRange(ctx context.Context, p authz.Principal, id string, req *dto.IncludeRangeRequest) (*dto.ExcludeRangeResponse, error)
	DeleteScreenshot(ctx context.Context, p authz.Principal, id string, screenshotID int64) error
	RestoreScreenshot(ctx context.Context, p authz.Principal, id string, screenshotID int64) error
	Submit(ctx context.Context, p authz.Principal, id string) (*dto.SessionResponse, error)
	Review(ctx context.Context, p authz.Principal, id string, req *dto.ReviewSessionRequest) (*dto.SessionResponse, error)
}

type sessionService struct {
	*environment
	cache *detailCache
}

// NewSessionService creates SessionService
func NewSessionService(env *environment, cache *detailCache) SessionService {
	return &sessionService{environment: env, cache: cache}
}

// ────────────────────── List ──────────────────────

func (s *sessionService) List(ctx context.Context, p authz.Principal, req *dto.SessionListRequest) ([]dto.SessionResponse, int64, error) {
	scope, err := listScope(p, req.Scope)
	if err != nil {
		return nil, 0, err
	}

	filters := &repository.SessionListFilters{
		CompanyID:  scope.CompanyID,
		Department: scope.Department,
		UserID:     scope.UserID,
	}
	if req.UserID != "" {
		if scope.UserID != "" && scope.UserID != req.UserID {
			return nil, 0, ErrNotReviewScope
		}
		filters.UserID = req.UserID
	}
	if req.Status != "" {
		st := model.SessionStatus(req.Status)
		if !st.Valid() {
			return nil, 0, ErrInvalidStatus
		}
		filters.Status = &st
	}
	if filters.From, err = dto.ParseOptionalDate(req.From); err != nil {
		return nil, 0, ErrInvalidDate
	}
	if filters.To, err = dto.ParseOptionalDate(req.To); err != nil {
		return nil, 0, ErrInvalidDate
	}

	sessions, total, err := s.repo.Session.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list sessions failed", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		list = append(list, toSessionResponse(&sessions[i]))
	}
	return list, total, nil
}

// ────────────────────── GetDetail ──────────────────────

func (s *sessionService) GetDetail(ctx context.Context, p authz.Principal, id string, interval int) (*dto.SessionDetailResponse, error) {
	if interval == 0 {
		interval = 1
	}
	if !activity.ValidInterval(interval) {
		return nil, ErrInvalidInterval
	}

	session, err := loadSession(ctx, s.environment, p, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeActFor(p, sessionSubject(session)); err != nil {
		return nil, err
	}

	viewer := viewerReviewer
	if p.UserID == session.UserID {
		viewer = viewerOwner
	}

	// samples keep arriving while recording, so only settled sessions are cached
	cacheable := session.Status != model.SessionRecording
	key := detailKey(session, interval, viewer)
	if cacheable {
		if v, ok := s.cache.get(ctx, key); ok {
			return v, nil
		}
	}

	logs, err := s.repo.Activity.ListBySession(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	usages, err := s.repo.Activity.ListUsagesBySession(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	manual, err := s.repo.Activity.ListRanges(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	// reviewers never see deleted screenshots; owners see them to restore
	shots, err := s.repo.Screenshot.ListBySession(ctx, session.SessionID, viewer == viewerOwner)
	if err != nil {
		return nil, err
	}

	detail := s.buildDetail(ctx, session, logs, usages, manual, shots, interval)
	if cacheable {
		s.cache.set(ctx, key, detail)
	}
	return detail, nil
}

func (s *sessionService) buildDetail(
	ctx context.Context,
	session *model.WorkSession,
	logs []model.ActivityLog,
	usages []model.WindowUsage,
	manual []model.ExcludedRange,
	shots []model.Screenshot,
	interval int,
) *dto.SessionDetailResponse {
	points := s.scoring.Points(logs, s.loc)

	ranked := activity.RankPrograms(usages)
	totalMinutes := activity.TotalMinutes(ranked)
	programs := make([]dto.ProgramUsageItem, 0, len(ranked))
	for _, r := range ranked {
		programs = append(programs, dto.ProgramUsageItem{
			ProgramUsage: r,
			Share:        activity.ProgramShare(r.Minutes, totalMinutes),
		})
	}

	screenshots := make([]dto.ScreenshotItem, 0, len(shots))
	for _, shot := range shots {
		at := shot.CapturedAt.In(s.loc)
		screenshots = append(screenshots, dto.ScreenshotItem{
			ID:         shot.ID,
			Time:       fmt.Sprintf("%d:%02d", at.Hour(), at.Minute()),
			CapturedAt: shot.CapturedAt,
			URL:        s.screenshotURL(ctx, shot.FileKey),
			IsDeleted:  shot.IsDeleted,
		})
	}

	return &dto.SessionDetailResponse{
		Session:        toSessionResponse(session),
		Interval:       interval,
		ActivityData:   activity.Aggregate(points, interval),
		Timeline:       activity.BuildTimeline(logs, usages, s.loc),
		ProgramUsage:   programs,
		Screenshots:    screenshots,
		ExcludedRanges: activity.CombineExcludedRanges(logs, manual, s.loc),
		Stats:          activity.Summarize(points),
	}
}

func (s *sessionService) screenshotURL(ctx context.Context, key string) string {
	if s.store == nil {
		return ""
	}
	url, err := s.store.PresignDownload(ctx, key)
	if err != nil {
		s.logger.Warn("presign screenshot download failed", zap.String("key", key), zap.Error(err))
		return s.store.PublicURL(key)
	}
	return url
}

// ────────────────────── UpdateMemo ──────────────────────

func (s *sessionService) UpdateMemo(ctx context.Context, p authz.Principal, id string, req *dto.UpdateMemoRequest) (*dto.SessionResponse, error) {
	session, err := s.loadEditable(ctx, p, id)
	if err != nil {
		return nil, err
	}

	session.Memo = strPtr(strings.TrimSpace(req.Memo))
	if err := s.repo.Session.Update(ctx, session); err != nil {
		s.logger.Error("update memo failed", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}

	resp := toSessionResponse(session)
	return &resp, nil
}

// ────────────────────── Excluded ranges ──────────────────────

// ExcludeRange flags the samples starting inside the range. A range no sample
// covers is kept as a manual entry so it still shows up in the list.
// Session totals are not recomputed.
func (s *sessionService) ExcludeRange(ctx context.Context, p authz.Principal, id string, req *dto.ExcludeRangeRequest) (*dto.ExcludeRangeResponse, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidRange
	}
	session, err := s.loadEditable(ctx, p, id)
	if err != nil {
		return nil, err
	}

	reason := strPtr(strings.TrimSpace(req.Reason))
	var affected int64
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		n, err := tx.Activity.SetExcluded(ctx, session.SessionID, req.StartTime, req.EndTime, true, reason)
		if err != nil {
			return err
		}
		affected = n
		if n == 0 {
			label := activity.DefaultExcludeReason
			if reason != nil {
				label = *reason
			}
			if err := tx.Activity.CreateRange(ctx, &model.ExcludedRange{
				SessionID: session.SessionID,
				StartTime: req.StartTime,
				EndTime:   req.EndTime,
				Reason:    label,
			}); err != nil {
				return err
			}
		}
		return tx.Session.Update(ctx, session)
	})
	if err != nil {
		s.logger.Error("exclude range failed", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}

	return &dto.ExcludeRangeResponse{AffectedSamples: affected}, nil
}

// IncludeRange clears exclusion on samples in the range and drops manual
// entries overlapping it
func (s *sessionService) IncludeRange(ctx context.Context, p authz.Principal, id string, req *dto.IncludeRangeRequest) (*dto.ExcludeRangeResponse, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidRange
	}
	session, err := s.loadEditable(ctx, p, id)
	if err != nil {
		return nil, err
	}

	var affected int64
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		n, err := tx.Activity.SetExcluded(ctx, session.SessionID, req.StartTime, req.EndTime, false, nil)
		if err != nil {
			return err
		}
		if _, err := tx.Activity.DeleteRanges(ctx, session.SessionID, req.StartTime, req.EndTime); err != nil {
			return err
		}
		affected = n
		return tx.Session.Update(ctx, session)
	})
	if err != nil {
		s.logger.Error("include range failed", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}

	return &dto.ExcludeRangeResponse{AffectedSamples: affected}, nil
}

// ────────────────────── Screenshots ──────────────────────

func (s *sessionService) DeleteScreenshot(ctx context.Context, p authz.Principal, id string, screenshotID int64) error {
	return s.setScreenshotDeleted(ctx, p, id, screenshotID, true)
}

func (s *sessionService) RestoreScreenshot(ctx context.Context, p authz.Principal, id string, screenshotID int64) error {
	return s.setScreenshotDeleted(ctx, p, id, screenshotID, false)
}

func (s *sessionService) setScreenshotDeleted(ctx context.Context, p authz.Principal, id string, screenshotID int64, deleted bool) error {
	session, err := s.loadEditable(ctx, p, id)
	if err != nil {
		return err
	}

	if _, err := s.repo.Screenshot.GetByID(ctx, session.SessionID, screenshotID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScreenshotNotFound
		}
		return err
	}

	var at = s.clock()
	deletedAt := &at
	if !deleted {
		deletedAt = nil
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Screenshot.SetDeleted(ctx, screenshotID, deleted, deletedAt); err != nil {
			return err
		}
		return tx.Session.Update(ctx, session)
	})
	if err != nil {
		s.logger.Error("toggle screenshot failed",
			zap.String("session_id", id),
			zap.Int64("screenshot_id", screenshotID),
			zap.Error(err),
		)
	}
	return err
}

// ────────────────────── Submit ──────────────────────

// Submit hands the session to a reviewer, or approves it straight away when
// the company enabled auto-approval.
func (s *sessionService) Submit(ctx context.Context, p authz.Principal, id string) (*dto.SessionResponse, error) {
	session, err := s.loadEditable(ctx, p, id)
	if err != nil {
		return nil, err
	}

	policy, _, err := policyFor(ctx, s.repo, p.CompanyID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	session.SubmittedAt = &now
	if policy.AutoApproveEnabled {
		session.Status = model.SessionApproved
		session.ApprovedAt = &now
		session.ApprovedBy = nil
	} else {
		session.Status = model.SessionSubmitted
	}

	if err := s.repo.Session.Update(ctx, session); err != nil {
		s.logger.Error("submit session failed", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}

	if session.Status == model.SessionApproved {
		metrics.SessionReviews.WithLabelValues("auto_approve").Inc()
	}

	resp := toSessionResponse(session)
	return &resp, nil
}

// ────────────────────── Review ──────────────────────

func (s *sessionService) Review(ctx context.Context, p authz.Principal, id string, req *dto.ReviewSessionRequest) (*dto.SessionResponse, error) {
	session, err := loadSession(ctx, s.environment, p, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeReview(p, sessionSubject(session)); err != nil {
		return nil, err
	}
	if session.Status != model.SessionSubmitted {
		return nil, ErrSessionNotSubmitted
	}

	now := s.clock()
	comment := strings.TrimSpace(req.Comment)
	switch req.Action {
	case ActionApprove:
		session.Status = model.SessionApproved
		session.ApprovedAt = &now
		reviewer := p.UserID
		session.ApprovedBy = &reviewer
		if comment != "" {
			session.AdminComment = &comment
		}
	case ActionReject:
		session.Status = model.SessionRejected
		reason := strings.TrimSpace(req.RejectReason)
		if reason == "" {
			reason = comment
		}
		session.RejectReason = strPtr(reason)
		if comment != "" {
			session.AdminComment = &comment
		}
	default:
		return nil, ErrInvalidAction
	}

	if err := s.repo.Session.Update(ctx, session); err != nil {
		s.logger.Error("review session failed", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}

	metrics.SessionReviews.WithLabelValues(req.Action).Inc()
	s.logger.Info("session reviewed",
		zap.String("session_id", id),
		zap.String("reviewer_id", p.UserID),
		zap.String("status", string(session.Status)),
	)

	resp := toSessionResponse(session)
	return &resp, nil
}

// ────────────────────── helpers ──────────────────────

// loadEditable owner-only; a rejected session reopens for editing
func (s *sessionService) loadEditable(ctx context.Context, p authz.Principal, id string) (*model.WorkSession, error) {
	session, err := loadSession(ctx, s.environment, p, id)
	if err != nil {
		return nil, err
	}
	if err := authz.AuthorizeOwner(p, sessionSubject(session)); err != nil {
		return nil, err
	}
	if !session.Status.Editable() {
		return nil, ErrSessionNotEditable
	}
	if session.Status == model.SessionRejected {
		session.Status = model.SessionEditing
	}
	return session, nil
}

// loadSession sessions of other companies are reported as missing
func loadSession(ctx context.Context, env *environment, p authz.Principal, id string) (*model.WorkSession, error) {
	session, err := env.repo.Session.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.User == nil {
		user, err := env.repo.User.GetByID(ctx, session.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSessionNotFound
			}
			return nil, err
		}
		session.User = user
	}
	if !authz.SameCompany(p, sessionSubject(session)) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func sessionSubject(s *model.WorkSession) authz.Subject {
	return authz.SubjectOf(s.User)
}

func toSessionResponse(s *model.WorkSession) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:                 s.SessionID,
		Date:               dto.FormatDate(s.Date),
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		Status:             string(s.Status),
		TotalWorkSeconds:   s.TotalWorkSeconds,
		TotalActiveSeconds: s.TotalActiveSeconds,
		DeviceOS:           s.DeviceOS,
		DeviceHostname:     s.DeviceHostname,
		Memo:               s.Memo,
		AdminComment:       s.AdminComment,
		RejectReason:       s.RejectReason,
		SubmittedAt:        s.SubmittedAt,
		ApprovedAt:         s.ApprovedAt,
		ApprovedBy:         s.ApprovedBy,
		Version:            s.Version,
	}
	if s.User != nil {
		resp.User = &dto.SessionUser{
			ID:         s.User.UserID,
			Name:       s.User.Name,
			Email:      s.User.Email,
			Department: s.User.DepartmentName(),
		}
	}
	return resp
}
