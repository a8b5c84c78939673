package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"talent_match_backend/internal/model"
	"talent_match_backend/internal/repository"
	"talent_match_backend/internal/util"

	"gorm.io/gorm"
)

const sweepSecret = "cron-secret"

type fakeLocker struct {
	held     bool
	err      error
	released int
}

func (l *fakeLocker) TryLock(ctx context.Context, ttl time.Duration) (func(), bool, error) {
	if l.err != nil {
		return func() {}, false, l.err
	}
	if l.held {
		return func() {}, false, nil
	}
	l.held = true
	return func() {
		l.held = false
		l.released++
	}, true, nil
}

type sweepFixture struct {
	*testFixture
	repo      *repository.InterviewRepository
	reminders *ReminderService
}

func newSweepFixture(t *testing.T) *sweepFixture {
	f := newFixture(t)
	repo := repository.NewInterviewRepository(f.db)
	return &sweepFixture{
		testFixture: f,
		repo:        repo,
		reminders:   NewReminderService(repo, f.notifier, nil, sweepSecret, time.Minute, "https://app.example.com"),
	}
}

// seedInterview 直接写库，提醒按创建时刻 createdAt 生成
func (f *sweepFixture) seedInterview(t *testing.T, scheduledAt, createdAt time.Time, status model.InterviewStatus) *model.Interview {
	t.Helper()
	iv := &model.Interview{
		EmployerID:      f.employer.ID,
		CandidateID:     f.candidate.ID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: 45,
		MeetingLink:     "https://meet.example.com/xyz",
		Status:          status,
		Reminders:       BuildReminders(scheduledAt, createdAt, model.ChannelInApp),
	}
	if err := f.repo.Create(iv); err != nil {
		t.Fatalf("seed interview: %v", err)
	}
	return iv
}

func (f *sweepFixture) reminderByKind(t *testing.T, interviewID string, kind model.ReminderKind) model.InterviewReminder {
	t.Helper()
	rs, err := f.repo.ListReminders(interviewID)
	if err != nil {
		t.Fatalf("ListReminders: %v", err)
	}
	for _, r := range rs {
		if r.Kind == kind {
			return r
		}
	}
	t.Fatalf("reminder %s not found", kind)
	return model.InterviewReminder{}
}

func TestSweepRejectsBadSecret(t *testing.T) {
	f := newSweepFixture(t)
	now := time.Now().UTC()

	for _, token := range []string{"", "wrong", sweepSecret + "x"} {
		if _, err := f.reminders.RunReminderSweep(context.Background(), token, now); !errors.Is(err, util.ErrInvalidCronSecret) {
			t.Fatalf("token %q: expected invalid secret, got %v", token, err)
		}
	}

	f.reminders.SetSecret("")
	if _, err := f.reminders.RunReminderSweep(context.Background(), "", now); !errors.Is(err, util.ErrAuthorization) {
		t.Fatalf("expected unconfigured secret to reject, got %v", err)
	}
}

func TestSweepDispatchesDueDayBeforeReminder(t *testing.T) {
	f := newSweepFixture(t)
	ctx := context.Background()
	scheduled := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	iv := f.seedInterview(t, scheduled, scheduled.Add(-48*time.Hour), model.InterviewConfirmed)

	now := scheduled.Add(-(23*time.Hour + 59*time.Minute))
	summary, err := f.reminders.RunReminderSweep(ctx, sweepSecret, now)
	if err != nil {
		t.Fatalf("RunReminderSweep: %v", err)
	}
	if summary.Processed != 1 || summary.Errors != 0 {
		t.Fatalf("expected 1 processed, got %+v", summary)
	}
	if summary.Timestamp != now.Format(time.RFC3339) {
		t.Fatalf("unexpected timestamp %q", summary.Timestamp)
	}

	day := f.reminderByKind(t, iv.ID, model.ReminderDayBefore)
	if !day.Sent || day.SentAt == nil || !day.SentAt.Equal(now) {
		t.Fatalf("expected day-before reminder sent at %v, got %+v", now, day)
	}
	hour := f.reminderByKind(t, iv.ID, model.ReminderHourBefore)
	if hour.Sent {
		t.Fatal("hour-before reminder is not due yet")
	}

	msgs := f.notifier.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(msgs))
	}
	body := msgs[0].Msg.Body
	for _, want := range []string{"Acme Inc", "1439 minutes", "2026-06-01 10:00:00", "https://meet.example.com/xyz"} {
		if !strings.Contains(body, want) {
			t.Fatalf("reminder body %q missing %q", body, want)
		}
	}
	if msgs[0].To.UserID != f.candidate.ID || msgs[0].Msg.Channels[0] != model.ChannelInApp {
		t.Fatalf("unexpected delivery target: %+v", msgs[0])
	}

	// 再跑一次不会重复发送
	summary, err = f.reminders.RunReminderSweep(ctx, sweepSecret, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if summary.Processed != 0 || len(f.notifier.messages()) != 1 {
		t.Fatalf("expected no duplicate delivery, got %+v", summary)
	}
}

func TestSweepRetriesFailedDelivery(t *testing.T) {
	f := newSweepFixture(t)
	ctx := context.Background()
	scheduled := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	iv := f.seedInterview(t, scheduled, scheduled.Add(-2*time.Hour), model.InterviewPending)
	now := scheduled.Add(-50 * time.Minute)

	f.notifier.failures = 1
	summary, err := f.reminders.RunReminderSweep(ctx, sweepSecret, now)
	if err != nil {
		t.Fatalf("RunReminderSweep: %v", err)
	}
	if summary.Processed != 0 || summary.Errors != 1 {
		t.Fatalf("expected one failure, got %+v", summary)
	}
	hour := f.reminderByKind(t, iv.ID, model.ReminderHourBefore)
	if hour.Sent || hour.SentAt != nil || hour.Error != "smtp timeout" {
		t.Fatalf("expected unsent reminder with error, got %+v", hour)
	}

	summary, err = f.reminders.RunReminderSweep(ctx, sweepSecret, now.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("retry sweep: %v", err)
	}
	if summary.Processed != 1 || summary.Errors != 0 {
		t.Fatalf("expected retry to succeed, got %+v", summary)
	}
	hour = f.reminderByKind(t, iv.ID, model.ReminderHourBefore)
	if !hour.Sent || hour.Error != "" {
		t.Fatalf("expected reminder sent after retry, got %+v", hour)
	}
}

func TestSweepSkipsInactiveInterviews(t *testing.T) {
	f := newSweepFixture(t)
	scheduled := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	for _, st := range []model.InterviewStatus{model.InterviewCancelled, model.InterviewCompleted, model.InterviewRescheduled} {
		f.seedInterview(t, scheduled, scheduled.Add(-48*time.Hour), st)
	}

	summary, err := f.reminders.RunReminderSweep(context.Background(), sweepSecret, scheduled.Add(-10*time.Minute))
	if err != nil {
		t.Fatalf("RunReminderSweep: %v", err)
	}
	if summary.Processed != 0 || summary.Errors != 0 || len(f.notifier.messages()) != 0 {
		t.Fatalf("expected nothing dispatched, got %+v", summary)
	}
}

func TestSweepCatchesUpMultipleDueReminders(t *testing.T) {
	f := newSweepFixture(t)
	scheduled := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f.seedInterview(t, scheduled, scheduled.Add(-48*time.Hour), model.InterviewPending)

	summary, err := f.reminders.RunReminderSweep(context.Background(), sweepSecret, scheduled.Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("RunReminderSweep: %v", err)
	}
	if summary.Processed != 3 {
		t.Fatalf("expected all three overdue reminders, got %+v", summary)
	}
}

func TestSweepLock(t *testing.T) {
	f := newSweepFixture(t)
	scheduled := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f.seedInterview(t, scheduled, scheduled.Add(-48*time.Hour), model.InterviewPending)
	now := scheduled.Add(-5 * time.Minute)

	locker := &fakeLocker{held: true}
	f.reminders.Locker = locker
	summary, err := f.reminders.RunReminderSweep(context.Background(), sweepSecret, now)
	if err != nil {
		t.Fatalf("RunReminderSweep: %v", err)
	}
	if !summary.Skipped || summary.Processed != 0 {
		t.Fatalf("expected skipped sweep, got %+v", summary)
	}

	locker.held = false
	summary, err = f.reminders.RunReminderSweep(context.Background(), sweepSecret, now)
	if err != nil {
		t.Fatalf("RunReminderSweep: %v", err)
	}
	if summary.Skipped || summary.Processed != 3 || locker.released != 1 {
		t.Fatalf("expected locked sweep to run and release, got %+v released=%d", summary, locker.released)
	}

	f.reminders.Locker = &fakeLocker{err: errors.New("redis down")}
	if _, err := f.reminders.RunReminderSweep(context.Background(), sweepSecret, now); err != nil {
		t.Fatalf("expected sweep to proceed without lock, got %v", err)
	}
}

// cancellingNotifier 模拟调用方在投递过程中断开
type cancellingNotifier struct {
	cancel context.CancelFunc
	calls  int
}

func (n *cancellingNotifier) Send(ctx context.Context, to Recipient, msg NotificationMessage) error {
	n.calls++
	n.cancel()
	return ctx.Err()
}

func TestSweepReleasesClaimWhenContextCancelled(t *testing.T) {
	f := newSweepFixture(t)
	scheduled := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	iv := f.seedInterview(t, scheduled, scheduled.Add(-48*time.Hour), model.InterviewConfirmed)
	now := scheduled.Add(-50 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifier := &cancellingNotifier{cancel: cancel}
	f.reminders.Notifier = notifier

	summary, err := f.reminders.RunReminderSweep(ctx, sweepSecret, now)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected sweep to stop with context.Canceled, got %v", err)
	}
	if summary == nil || summary.Processed != 0 || summary.Errors != 1 || notifier.calls != 1 {
		t.Fatalf("expected one failed delivery before stopping, got %+v calls=%d", summary, notifier.calls)
	}

	rs, err := f.repo.ListReminders(iv.ID)
	if err != nil {
		t.Fatalf("ListReminders: %v", err)
	}
	failed := 0
	for _, r := range rs {
		if r.Sent || r.SentAt != nil {
			t.Fatalf("no reminder may stay claimed after cancellation, got %+v", r)
		}
		if r.Error != "" {
			failed++
			if r.Error != context.Canceled.Error() {
				t.Fatalf("unexpected recorded error %q", r.Error)
			}
		}
	}
	if failed != 1 {
		t.Fatalf("expected exactly one reminder with a recorded error, got %d", failed)
	}

	// 下一次正常扫描补发两条到期提醒
	f.reminders.Notifier = f.notifier
	summary, err = f.reminders.RunReminderSweep(context.Background(), sweepSecret, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("follow-up sweep: %v", err)
	}
	if summary.Processed != 2 || len(f.notifier.messages()) != 2 {
		t.Fatalf("expected both due reminders delivered, got %+v", summary)
	}
}

func TestSweepContinuesWhenReleaseFails(t *testing.T) {
	f := newSweepFixture(t)
	scheduled := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f.seedInterview(t, scheduled, scheduled.Add(-48*time.Hour), model.InterviewPending)

	// 让释放认领的更新（sent=false）失败
	err := f.db.Callback().Update().Before("gorm:update").Register("test:fail_release", func(tx *gorm.DB) {
		if m, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			if sent, ok := m["sent"].(bool); ok && !sent {
				tx.AddError(errors.New("database unavailable"))
			}
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	f.notifier.failures = 1
	summary, err := f.reminders.RunReminderSweep(context.Background(), sweepSecret, scheduled.Add(-50*time.Minute))
	if err != nil {
		t.Fatalf("RunReminderSweep: %v", err)
	}
	if summary.Errors != 1 || summary.Processed != 1 {
		t.Fatalf("expected the failed release to be counted and the sweep to continue, got %+v", summary)
	}
	if len(f.notifier.messages()) != 1 {
		t.Fatalf("expected the remaining reminder to be delivered, got %d", len(f.notifier.messages()))
	}
}

func TestMinutesUntil(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := MinutesUntil(base.Add(90*time.Minute+30*time.Second), base); got != 90 {
		t.Fatalf("expected 90, got %d", got)
	}
	if got := MinutesUntil(base.Add(-time.Minute), base); got != 0 {
		t.Fatalf("expected 0 for started interview, got %d", got)
	}
}
