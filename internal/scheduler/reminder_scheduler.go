package scheduler

import (
	"context"
	"sync"
	"time"

	"talent_match_backend/internal/service"
	"talent_match_backend/pkg/logger"

	"go.uber.org/zap"
)

// SweepRunner 由 ReminderService 实现
type SweepRunner interface {
	RunReminderSweep(ctx context.Context, token string, now time.Time) (*service.SweepSummary, error)
}

// ReminderScheduler 进程内定时触发提醒扫描，与外部 cron 调用走同一个密钥校验
type ReminderScheduler struct {
	runner   SweepRunner
	interval time.Duration
	secret   func() string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewReminderScheduler(runner SweepRunner, interval time.Duration, secret func() string) *ReminderScheduler {
	return &ReminderScheduler{
		runner:   runner,
		interval: interval,
		secret:   secret,
	}
}

// Start 重复调用无副作用
func (s *ReminderScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil || s.interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, s.done)
	logger.Log.Info("Reminder scheduler started", zap.Duration("interval", s.interval))
}

func (s *ReminderScheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *ReminderScheduler) tick(ctx context.Context) {
	summary, err := s.runner.RunReminderSweep(ctx, s.secret(), time.Now().UTC())
	if err != nil {
		logger.Log.Error("Scheduled reminder sweep failed", zap.Error(err))
		return
	}
	if summary.Errors > 0 {
		logger.Log.Warn("Scheduled reminder sweep had delivery errors",
			zap.Int("processed", summary.Processed), zap.Int("errors", summary.Errors))
	}
}

// Stop 等待当前扫描结束后返回
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	logger.Log.Info("Reminder scheduler stopped")
}
