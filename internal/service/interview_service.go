package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"talent_match_backend/internal/config"
	"talent_match_backend/internal/model"
	"talent_match_backend/internal/repository"
	"talent_match_backend/internal/util"
	"talent_match_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ScheduleInterviewRequest 雇主安排面试
// swagger:model ScheduleInterviewRequest
type ScheduleInterviewRequest struct {
	CandidateID     uint      `json:"candidateId" binding:"required"`
	JobID           *uint     `json:"jobId"`
	ScheduledAt     time.Time `json:"scheduledAt" binding:"required"`
	DurationMinutes int       `json:"durationMinutes"`
	MeetingLink     string    `json:"meetingLink"`
	Channel         string    `json:"channel"`
	Notes           string    `json:"notes"`
}

type InterviewService struct {
	DB            *gorm.DB
	InterviewRepo *repository.InterviewRepository
	AppRepo       *repository.ApplicationRepository
	UserRepo      *repository.UserRepository
	Notifier      NotificationSender
	Cfg           *config.Config

	now func() time.Time
}

func NewInterviewService(
	db *gorm.DB,
	interviewRepo *repository.InterviewRepository,
	appRepo *repository.ApplicationRepository,
	userRepo *repository.UserRepository,
	notifier NotificationSender,
	cfg *config.Config,
) *InterviewService {
	return &InterviewService{
		DB:            db,
		InterviewRepo: interviewRepo,
		AppRepo:       appRepo,
		UserRepo:      userRepo,
		Notifier:      notifier,
		Cfg:           cfg,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// BuildReminders 只保留创建时仍在未来的提醒
func BuildReminders(scheduledAt, now time.Time, channel string) []model.InterviewReminder {
	var reminders []model.InterviewReminder
	for _, o := range model.ReminderOffsets {
		remindAt := scheduledAt.Add(-o.Offset)
		if !remindAt.After(now) {
			continue
		}
		reminders = append(reminders, model.InterviewReminder{
			Kind:     o.Kind,
			RemindAt: remindAt,
			Channel:  channel,
		})
	}
	return reminders
}

// resolveChannel 拒绝未注册的渠道，否则提醒会在每次扫描中失败
func (s *InterviewService) resolveChannel(channel string) (string, error) {
	if channel == "" {
		channel = model.ChannelInApp
		if s.Cfg != nil && len(s.Cfg.Notification.Channels) > 0 {
			channel = s.Cfg.Notification.Channels[0]
		}
	}
	switch channel {
	case model.ChannelInApp, model.ChannelEmail, model.ChannelPush:
	default:
		return "", util.Validation("unsupported reminder channel %q", channel)
	}
	if cs, ok := s.Notifier.(ChannelSupporter); ok && !cs.Supports(channel) {
		return "", util.Validation("reminder channel %q is not enabled", channel)
	}
	return channel, nil
}

// Schedule 创建面试并生成提醒，同时把申请推进到 interview 状态
func (s *InterviewService) Schedule(ctx context.Context, employerID uint, req ScheduleInterviewRequest) (*model.Interview, error) {
	now := s.now()
	scheduledAt := req.ScheduledAt.UTC().Truncate(time.Second)
	if !scheduledAt.After(now) {
		return nil, util.Validation("scheduledAt must be in the future")
	}
	channel, err := s.resolveChannel(req.Channel)
	if err != nil {
		return nil, err
	}

	candidate, err := s.UserRepo.FindByID(req.CandidateID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	if candidate.Role != model.Candidate {
		return nil, util.Validation("user %d is not a candidate", req.CandidateID)
	}
	employer, err := s.UserRepo.FindByID(employerID)
	if err != nil {
		return nil, err
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = 30
	}
	interview := &model.Interview{
		EmployerID:      employerID,
		CandidateID:     req.CandidateID,
		JobID:           req.JobID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: duration,
		MeetingLink:     strings.TrimSpace(req.MeetingLink),
		Status:          model.InterviewPending,
		Notes:           req.Notes,
		Reminders:       BuildReminders(scheduledAt, now, channel),
	}

	if err := s.createWithApplicationUpdate(ctx, interview); err != nil {
		return nil, err
	}

	msg := NotificationMessage{
		Type:  util.NotificationInterviewScheduled,
		Title: "Interview scheduled",
		Body: fmt.Sprintf("%s scheduled an interview with you on %s UTC.",
			employer.DisplayName(), scheduledAt.Format(util.TimeFormat)),
		Link: s.interviewLink(interview.ID),
	}
	if err := s.Notifier.Send(ctx, recipientOf(candidate), msg); err != nil {
		logger.Log.Warn("Failed to notify candidate about interview",
			zap.String("interviewId", interview.ID), zap.Error(err))
	}

	logger.Log.Info("Interview scheduled",
		zap.String("interviewId", interview.ID),
		zap.Uint("employerId", employerID),
		zap.Uint("candidateId", req.CandidateID),
		zap.Int("reminders", len(interview.Reminders)),
	)
	return interview, nil
}

func (s *InterviewService) createWithApplicationUpdate(ctx context.Context, interview *model.Interview) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.InterviewRepo.WithTx(tx).Create(interview); err != nil {
			return err
		}
		appRepo := s.AppRepo.WithTx(tx)
		var app *model.Application
		var err error
		if interview.JobID != nil {
			app, err = appRepo.FindByJobAndCandidate(*interview.JobID, interview.CandidateID)
			if repository.IsNotFound(err) {
				app, err = nil, nil
			}
		} else {
			app, err = appRepo.LatestBetween(interview.EmployerID, interview.CandidateID)
		}
		if err != nil {
			return err
		}
		if app != nil && app.EmployerID == interview.EmployerID {
			return appRepo.UpdateStatus(app.ID, model.ApplicationInterview)
		}
		return nil
	})
}

// Get 双方都可查看
func (s *InterviewService) Get(userID uint, interviewID string) (*model.Interview, error) {
	interview, err := s.InterviewRepo.FindByID(interviewID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrInterviewNotFound
		}
		return nil, err
	}
	if interview.EmployerID != userID && interview.CandidateID != userID {
		return nil, util.ErrInterviewNotFound
	}
	return interview, nil
}

func (s *InterviewService) ListMine(userID uint, role model.UserRole) ([]model.Interview, error) {
	if role == model.Employer {
		return s.InterviewRepo.ListByEmployer(userID)
	}
	return s.InterviewRepo.ListByCandidate(userID)
}

// 终态不可再变更
var terminalInterviewStatuses = map[model.InterviewStatus]bool{
	model.InterviewCompleted:   true,
	model.InterviewCancelled:   true,
	model.InterviewNoShow:      true,
	model.InterviewRescheduled: true,
}

// UpdateStatus 候选人只能确认或取消；改期走 Reschedule
func (s *InterviewService) UpdateStatus(userID uint, role model.UserRole, interviewID string, status model.InterviewStatus) error {
	if !status.IsValid() || status == model.InterviewRescheduled {
		return util.Validation("invalid interview status %q", status)
	}
	interview, err := s.Get(userID, interviewID)
	if err != nil {
		return err
	}
	if terminalInterviewStatuses[interview.Status] {
		return util.Validation("interview is already %s", interview.Status)
	}
	if interview.CandidateID == userID && role != model.Employer {
		if status != model.InterviewConfirmed && status != model.InterviewCancelled {
			return fmt.Errorf("%w: candidates may only confirm or cancel", util.ErrForbidden)
		}
	}
	return s.InterviewRepo.UpdateStatus(interview.ID, status)
}

// Reschedule 旧面试标记为 rescheduled，新建一场并重新生成提醒
func (s *InterviewService) Reschedule(ctx context.Context, employerID uint, interviewID string, newTime time.Time) (*model.Interview, error) {
	old, err := s.Get(employerID, interviewID)
	if err != nil {
		return nil, err
	}
	if old.EmployerID != employerID {
		return nil, util.ErrInterviewNotFound
	}
	if terminalInterviewStatuses[old.Status] {
		return nil, util.Validation("interview is already %s", old.Status)
	}
	now := s.now()
	scheduledAt := newTime.UTC().Truncate(time.Second)
	if !scheduledAt.After(now) {
		return nil, util.Validation("scheduledAt must be in the future")
	}

	// 沿用原渠道，渠道已停用时退回默认渠道
	var prev string
	if len(old.Reminders) > 0 {
		prev = old.Reminders[0].Channel
	}
	channel, err := s.resolveChannel(prev)
	if err != nil {
		if channel, err = s.resolveChannel(""); err != nil {
			return nil, err
		}
	}
	oldID := old.ID
	next := &model.Interview{
		EmployerID:        old.EmployerID,
		CandidateID:       old.CandidateID,
		JobID:             old.JobID,
		ScheduledAt:       scheduledAt,
		DurationMinutes:   old.DurationMinutes,
		MeetingLink:       old.MeetingLink,
		Status:            model.InterviewPending,
		Notes:             old.Notes,
		RescheduledFromID: &oldID,
		Reminders:         BuildReminders(scheduledAt, now, channel),
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.InterviewRepo.WithTx(tx)
		if err := repo.UpdateStatus(old.ID, model.InterviewRescheduled); err != nil {
			return err
		}
		return repo.Create(next)
	})
	if err != nil {
		return nil, err
	}

	msg := NotificationMessage{
		Type:  util.NotificationInterviewScheduled,
		Title: "Interview rescheduled",
		Body: fmt.Sprintf("%s moved your interview to %s UTC.",
			old.Employer.DisplayName(), scheduledAt.Format(util.TimeFormat)),
		Link: s.interviewLink(next.ID),
	}
	if err := s.Notifier.Send(ctx, recipientOf(&old.Candidate), msg); err != nil {
		logger.Log.Warn("Failed to notify candidate about reschedule",
			zap.String("interviewId", next.ID), zap.Error(err))
	}
	return next, nil
}

func (s *InterviewService) interviewLink(id string) string {
	base := ""
	if s.Cfg != nil {
		base = strings.TrimRight(s.Cfg.Notification.AppBaseURL, "/")
	}
	return base + "/interviews/" + id
}
