package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"talent_match_backend/internal/model"
	"talent_match_backend/internal/repository"
	"talent_match_backend/internal/util"
	"talent_match_backend/pkg/logger"
	"talent_match_backend/pkg/monitoring"
	"talent_match_backend/pkg/security"
	"talent_match_backend/pkg/tracing"

	"github.com/dustin/go-humanize"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SweepSummary 只向调用方报告汇总计数
type SweepSummary struct {
	Processed int    `json:"processed"`
	Errors    int    `json:"errors"`
	Skipped   bool   `json:"skipped,omitempty"`
	Timestamp string `json:"timestamp"`
}

// SweepLocker 防止多个实例同时扫描；拿不到锁时 ok=false
type SweepLocker interface {
	TryLock(ctx context.Context, ttl time.Duration) (release func(), ok bool, err error)
}

const (
	sweepLockKey   = "talent_match:reminder_sweep:lock"
	releaseTimeout = 5 * time.Second
)

// RedisSweepLocker 基于 SETNX 的扫描锁
type RedisSweepLocker struct {
	Redis *redis.Client
}

func (l *RedisSweepLocker) TryLock(ctx context.Context, ttl time.Duration) (func(), bool, error) {
	token := model.GenerateUUID()
	ok, err := l.Redis.SetNX(ctx, sweepLockKey, token, ttl).Result()
	if err != nil || !ok {
		return func() {}, false, err
	}
	release := func() {
		// 只删除自己持有的锁
		cur, err := l.Redis.Get(context.Background(), sweepLockKey).Result()
		if err == nil && cur == token {
			l.Redis.Del(context.Background(), sweepLockKey)
		}
	}
	return release, true, nil
}

type ReminderService struct {
	InterviewRepo *repository.InterviewRepository
	Notifier      NotificationSender
	Locker        SweepLocker
	LockTTL       time.Duration
	AppBaseURL    string

	mu     sync.RWMutex
	secret string
}

func NewReminderService(
	interviewRepo *repository.InterviewRepository,
	notifier NotificationSender,
	locker SweepLocker,
	secret string,
	lockTTL time.Duration,
	appBaseURL string,
) *ReminderService {
	return &ReminderService{
		InterviewRepo: interviewRepo,
		Notifier:      notifier,
		Locker:        locker,
		LockTTL:       lockTTL,
		AppBaseURL:    strings.TrimRight(appBaseURL, "/"),
		secret:        secret,
	}
}

// SetSecret 配置热更新时替换共享密钥
func (s *ReminderService) SetSecret(secret string) {
	s.mu.Lock()
	s.secret = secret
	s.mu.Unlock()
}

func (s *ReminderService) CurrentSecret() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secret
}

// RunReminderSweep 投递所有到期未发送的提醒。
// 每条提醒先用条件更新认领再投递，投递失败释放认领并记录错误，下次扫描重试。
func (s *ReminderService) RunReminderSweep(ctx context.Context, token string, now time.Time) (*SweepSummary, error) {
	if !security.SecretMatches(token, s.CurrentSecret()) {
		return nil, util.ErrInvalidCronSecret
	}

	ctx, span := tracing.Tracer.Start(ctx, "ReminderService.RunReminderSweep")
	defer span.End()
	start := time.Now()
	defer func() {
		monitoring.ReminderSweepDuration.Observe(time.Since(start).Seconds())
	}()

	now = now.UTC()
	summary := &SweepSummary{Timestamp: now.Format(time.RFC3339)}

	if s.Locker != nil {
		ttl := s.LockTTL
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		release, ok, err := s.Locker.TryLock(ctx, ttl)
		switch {
		case err != nil:
			// 锁不可用时仍可安全执行，认领机制保证不重复投递
			logger.Log.Warn("Sweep lock unavailable, continuing without it", zap.Error(err))
		case !ok:
			logger.Log.Info("Reminder sweep already running elsewhere, skipping")
			summary.Skipped = true
			return summary, nil
		default:
			defer release()
		}
	}

	interviews, err := s.InterviewRepo.FindDueForReminders(ctx, now)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("select due reminders: %w", err)
	}

	for i := range interviews {
		iv := &interviews[i]
		for _, r := range iv.Reminders {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			s.dispatch(ctx, iv, r, now, summary)
		}
	}

	span.SetAttributes(
		attribute.Int("sweep.processed", summary.Processed),
		attribute.Int("sweep.errors", summary.Errors),
	)
	logger.Log.Info("Reminder sweep finished",
		zap.Int("processed", summary.Processed),
		zap.Int("errors", summary.Errors),
	)
	return summary, nil
}

func (s *ReminderService) dispatch(ctx context.Context, iv *model.Interview, r model.InterviewReminder, now time.Time, summary *SweepSummary) {
	claimed, err := s.InterviewRepo.ClaimReminder(ctx, r.ID, now)
	if err != nil {
		summary.Errors++
		monitoring.RemindersDispatched.WithLabelValues("failed").Inc()
		logger.Log.Error("Failed to claim reminder", zap.Uint("reminderId", r.ID), zap.Error(err))
		return
	}
	if !claimed {
		monitoring.RemindersDispatched.WithLabelValues("skipped").Inc()
		return
	}

	msg := s.reminderMessage(iv, r, now)
	if err := s.Notifier.Send(ctx, recipientOf(&iv.Candidate), msg); err != nil {
		summary.Errors++
		monitoring.RemindersDispatched.WithLabelValues("failed").Inc()
		logger.Log.Warn("Reminder delivery failed",
			zap.Uint("reminderId", r.ID),
			zap.String("interviewId", iv.ID),
			zap.Error(err),
		)
		s.release(ctx, r.ID, err)
		return
	}

	summary.Processed++
	monitoring.RemindersDispatched.WithLabelValues("sent").Inc()
}

// release 释放认领。请求 ctx 可能已被取消（调用方断开、调度器停止），
// 释放必须照常写库，否则提醒停在 sent=true 永远不会再被选中
func (s *ReminderService) release(ctx context.Context, reminderID uint, cause error) {
	relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := s.InterviewRepo.ReleaseReminder(relCtx, reminderID, deliveryErrorText(cause)); err != nil {
		logger.Log.Error("Failed to release reminder", zap.Uint("reminderId", reminderID), zap.Error(err))
	}
}

// MinutesUntil 距面试开始的分钟数，向下取整，已开始时为 0
func MinutesUntil(scheduledAt, now time.Time) int {
	d := scheduledAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

func (s *ReminderService) reminderMessage(iv *model.Interview, r model.InterviewReminder, now time.Time) NotificationMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Your interview with %s starts %s (%d minutes), at %s UTC.",
		iv.Employer.DisplayName(),
		humanize.RelTime(iv.ScheduledAt, now, "ago", "from now"),
		MinutesUntil(iv.ScheduledAt, now),
		iv.ScheduledAt.UTC().Format(util.TimeFormat),
	)
	if iv.MeetingLink != "" {
		fmt.Fprintf(&b, " Meeting link: %s", iv.MeetingLink)
	}
	return NotificationMessage{
		Type:     util.NotificationInterviewReminder,
		Title:    "Interview reminder",
		Body:     b.String(),
		Link:     s.AppBaseURL + "/interviews/" + iv.ID,
		Channels: []string{r.Channel},
	}
}

// deliveryErrorText 释放时写入的错误信息，不能为空
func deliveryErrorText(err error) string {
	text := err.Error()
	if errors.Is(err, util.ErrDelivery) {
		text = util.Message(err)
	}
	if text == "" {
		text = "delivery failed"
	}
	return text
}
