package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"talent_match_backend/internal/model"
	"talent_match_backend/internal/repository"
	"talent_match_backend/internal/util"
)

func TestBuildReminders(t *testing.T) {
	scheduled := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		now  time.Time
		want []model.ReminderKind
	}{
		{"two days ahead", scheduled.Add(-48 * time.Hour), []model.ReminderKind{model.ReminderDayBefore, model.ReminderHourBefore, model.ReminderFifteenMinutes}},
		{"exactly a day ahead skips day reminder", scheduled.Add(-24 * time.Hour), []model.ReminderKind{model.ReminderHourBefore, model.ReminderFifteenMinutes}},
		{"thirty minutes ahead", scheduled.Add(-30 * time.Minute), []model.ReminderKind{model.ReminderFifteenMinutes}},
		{"ten minutes ahead", scheduled.Add(-10 * time.Minute), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildReminders(scheduled, tt.now, model.ChannelEmail)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d reminders, got %d", len(tt.want), len(got))
			}
			for i, r := range got {
				if r.Kind != tt.want[i] || r.Channel != model.ChannelEmail || r.Sent {
					t.Fatalf("reminder %d = %+v", i, r)
				}
			}
		})
	}

	got := BuildReminders(scheduled, scheduled.Add(-48*time.Hour), model.ChannelInApp)
	wantAt := []time.Time{scheduled.Add(-24 * time.Hour), scheduled.Add(-time.Hour), scheduled.Add(-15 * time.Minute)}
	for i, r := range got {
		if !r.RemindAt.Equal(wantAt[i]) {
			t.Fatalf("reminder %d at %v, want %v", i, r.RemindAt, wantAt[i])
		}
	}
}

func newInterviewService(f *testFixture, now time.Time) *InterviewService {
	userRepo := repository.NewUserRepository(f.db)
	s := NewInterviewService(f.db, repository.NewInterviewRepository(f.db), f.apps.AppRepo, userRepo, f.notifier, f.cfg)
	s.now = fixedClock(now)
	return s
}

func TestScheduleInterview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 8, 15, 0, 0, 0, time.UTC)
	svc := newInterviewService(f, now)

	job, _ := f.jobs.Create(f.employer.ID, JobRequest{Title: "SRE"})
	app, err := f.apps.Apply(f.candidate.ID, job.ID, "")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	_, err = svc.Schedule(ctx, f.employer.ID, ScheduleInterviewRequest{
		CandidateID: f.candidate.ID,
		ScheduledAt: now.Add(-time.Minute),
	})
	if !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected validation error for past interview, got %v", err)
	}

	_, err = svc.Schedule(ctx, f.employer.ID, ScheduleInterviewRequest{
		CandidateID: f.candidate.ID,
		ScheduledAt: now.Add(48 * time.Hour),
		Channel:     "pigeon",
	})
	if !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected validation error for unknown channel, got %v", err)
	}

	iv, err := svc.Schedule(ctx, f.employer.ID, ScheduleInterviewRequest{
		CandidateID: f.candidate.ID,
		JobID:       &job.ID,
		ScheduledAt: now.Add(48 * time.Hour),
		MeetingLink: "https://meet.example.com/abc",
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if iv.Status != model.InterviewPending || iv.DurationMinutes != 30 {
		t.Fatalf("unexpected interview defaults: %+v", iv)
	}

	reminders, err := svc.InterviewRepo.ListReminders(iv.ID)
	if err != nil {
		t.Fatalf("ListReminders: %v", err)
	}
	if len(reminders) != 3 {
		t.Fatalf("expected 3 stored reminders, got %d", len(reminders))
	}
	for _, r := range reminders {
		if r.Sent || r.Channel != model.ChannelInApp {
			t.Fatalf("unexpected stored reminder: %+v", r)
		}
	}

	updated, _ := f.apps.AppRepo.FindByID(app.ID)
	if updated.Status != model.ApplicationInterview {
		t.Fatalf("expected application status interview, got %s", updated.Status)
	}
	if msgs := f.notifier.messages(); len(msgs) != 1 || msgs[0].Msg.Type != util.NotificationInterviewScheduled {
		t.Fatalf("expected a scheduling notification, got %+v", msgs)
	}
}

func TestScheduleRejectsUnregisteredChannel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 8, 15, 0, 0, 0, time.UTC)
	svc := newInterviewService(f, now)
	// 未启用 Redis 时不注册 push 渠道
	svc.Notifier = NewMultiChannelNotifier([]string{model.ChannelInApp},
		&InAppChannel{Repo: repository.NewNotificationRepository(f.db)}, &EmailChannel{})

	_, err := svc.Schedule(ctx, f.employer.ID, ScheduleInterviewRequest{
		CandidateID: f.candidate.ID,
		ScheduledAt: now.Add(48 * time.Hour),
		Channel:     model.ChannelPush,
	})
	if !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected validation error for push without redis, got %v", err)
	}

	iv, err := svc.Schedule(ctx, f.employer.ID, ScheduleInterviewRequest{
		CandidateID: f.candidate.ID,
		ScheduledAt: now.Add(48 * time.Hour),
		Channel:     model.ChannelEmail,
	})
	if err != nil {
		t.Fatalf("Schedule with email: %v", err)
	}
	if iv.Reminders[0].Channel != model.ChannelEmail {
		t.Fatalf("expected email reminders, got %+v", iv.Reminders[0])
	}
}

func TestInterviewStatusRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 8, 15, 0, 0, 0, time.UTC)
	svc := newInterviewService(f, now)

	iv, err := svc.Schedule(ctx, f.employer.ID, ScheduleInterviewRequest{
		CandidateID: f.candidate.ID,
		ScheduledAt: now.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	err = svc.UpdateStatus(f.candidate.ID, model.Candidate, iv.ID, model.InterviewCompleted)
	if !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("expected candidate completion to be forbidden, got %v", err)
	}
	if err := svc.UpdateStatus(f.candidate.ID, model.Candidate, iv.ID, model.InterviewConfirmed); err != nil {
		t.Fatalf("candidate confirm: %v", err)
	}
	outsider := createUser(t, f.db, "Mallory", model.Candidate)
	if err := svc.UpdateStatus(outsider.ID, model.Candidate, iv.ID, model.InterviewCancelled); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected outsider to get not found, got %v", err)
	}

	next, err := svc.Reschedule(ctx, f.employer.ID, iv.ID, now.Add(26*time.Hour))
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if next.RescheduledFromID == nil || *next.RescheduledFromID != iv.ID {
		t.Fatalf("expected rescheduled-from link")
	}
	if len(next.Reminders) != 3 {
		t.Fatalf("expected fresh reminders, got %d", len(next.Reminders))
	}
	old, _ := svc.InterviewRepo.FindByID(iv.ID)
	if old.Status != model.InterviewRescheduled {
		t.Fatalf("expected old interview to be rescheduled, got %s", old.Status)
	}
	if err := svc.UpdateStatus(f.employer.ID, model.Employer, iv.ID, model.InterviewConfirmed); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected terminal status to reject updates, got %v", err)
	}
}
