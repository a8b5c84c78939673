package model

import (
	"time"
)

type InterviewStatus string

const (
	InterviewPending     InterviewStatus = "pending"
	InterviewConfirmed   InterviewStatus = "confirmed"
	InterviewInProgress  InterviewStatus = "in_progress"
	InterviewCompleted   InterviewStatus = "completed"
	InterviewCancelled   InterviewStatus = "cancelled"
	InterviewNoShow      InterviewStatus = "no_show"
	InterviewRescheduled InterviewStatus = "rescheduled"
)

func (s InterviewStatus) IsValid() bool {
	switch s {
	case InterviewPending, InterviewConfirmed, InterviewInProgress, InterviewCompleted,
		InterviewCancelled, InterviewNoShow, InterviewRescheduled:
		return true
	default:
		return false
	}
}

// RemindableStatuses 只有这些状态的面试会被提醒扫描选中
var RemindableStatuses = []InterviewStatus{InterviewPending, InterviewConfirmed}

type Interview struct {
	UUIDBase
	EmployerID        uint                `gorm:"index;not null" json:"employerId"`
	Employer          User                `gorm:"foreignKey:EmployerID" json:"employer,omitempty"`
	CandidateID       uint                `gorm:"index;not null" json:"candidateId"`
	Candidate         User                `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
	JobID             *uint               `gorm:"index" json:"jobId,omitempty"`
	ScheduledAt       time.Time           `gorm:"index;not null" json:"scheduledAt"`
	DurationMinutes   int                 `gorm:"default:30" json:"durationMinutes"`
	MeetingLink       string              `gorm:"size:255" json:"meetingLink,omitempty"`
	Status            InterviewStatus     `gorm:"size:20;index;not null;default:'pending'" json:"status"`
	Notes             string              `gorm:"type:text" json:"notes,omitempty"`
	RescheduledFromID *string             `gorm:"type:varchar(36)" json:"rescheduledFromId,omitempty"`
	Reminders         []InterviewReminder `gorm:"foreignKey:InterviewID" json:"reminders,omitempty"`
}

func (Interview) TableName() string {
	return "interviews"
}

type ReminderKind string

const (
	ReminderDayBefore      ReminderKind = "day_before"
	ReminderHourBefore     ReminderKind = "hour_before"
	ReminderFifteenMinutes ReminderKind = "fifteen_minutes"
)

// ReminderOffsets 提醒相对面试时间的固定提前量
var ReminderOffsets = []struct {
	Kind   ReminderKind
	Offset time.Duration
}{
	{ReminderDayBefore, 24 * time.Hour},
	{ReminderHourBefore, time.Hour},
	{ReminderFifteenMinutes, 15 * time.Minute},
}

// InterviewReminder 创建后不会重建；发送失败时 Sent 保持 false 并记录 Error
type InterviewReminder struct {
	BaseModel
	InterviewID string       `gorm:"index;type:varchar(36);not null" json:"interviewId"`
	Kind        ReminderKind `gorm:"size:20;not null" json:"kind"`
	RemindAt    time.Time    `gorm:"index;not null" json:"remindAt"`
	Channel     string       `gorm:"size:20;not null" json:"channel"`
	Sent        bool         `gorm:"index;not null" json:"sent"`
	SentAt      *time.Time   `json:"sentAt,omitempty"`
	Error       string       `gorm:"type:text" json:"error,omitempty"`
}

func (InterviewReminder) TableName() string {
	return "interview_reminders"
}
