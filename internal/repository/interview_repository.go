package repository

import (
	"context"
	"time"

	"talent_match_backend/internal/model"

	"gorm.io/gorm"
)

type InterviewRepository struct {
	DB *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) *InterviewRepository {
	return &InterviewRepository{DB: db}
}

func (r *InterviewRepository) WithTx(tx *gorm.DB) *InterviewRepository {
	return &InterviewRepository{DB: tx}
}

// Create 同时写入 Reminders
func (r *InterviewRepository) Create(interview *model.Interview) error {
	return r.DB.Omit("Employer", "Candidate").Create(interview).Error
}

func (r *InterviewRepository) FindByID(id string) (*model.Interview, error) {
	var interview model.Interview
	err := r.DB.Preload("Reminders").Preload("Employer").Preload("Candidate").First(&interview, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &interview, nil
}

func (r *InterviewRepository) ListByEmployer(employerID uint) ([]model.Interview, error) {
	var interviews []model.Interview
	err := r.DB.Preload("Candidate").Where("employer_id = ?", employerID).Order("scheduled_at asc").Find(&interviews).Error
	return interviews, err
}

func (r *InterviewRepository) ListByCandidate(candidateID uint) ([]model.Interview, error) {
	var interviews []model.Interview
	err := r.DB.Preload("Employer").Where("candidate_id = ?", candidateID).Order("scheduled_at asc").Find(&interviews).Error
	return interviews, err
}

func (r *InterviewRepository) UpdateStatus(id string, status model.InterviewStatus) error {
	return r.DB.Model(&model.Interview{}).Where("id = ?", id).Update("status", status).Error
}

// FindDueForReminders 选出有到期未发送提醒的面试，只预加载到期未发送的提醒
func (r *InterviewRepository) FindDueForReminders(ctx context.Context, now time.Time) ([]model.Interview, error) {
	var interviews []model.Interview
	err := r.DB.WithContext(ctx).
		Where("status IN ?", model.RemindableStatuses).
		Where("EXISTS (SELECT 1 FROM interview_reminders ir WHERE ir.interview_id = interviews.id "+
			"AND ir.sent = ? AND ir.remind_at <= ? AND ir.deleted_at IS NULL)", false, now).
		Preload("Employer").
		Preload("Candidate").
		Preload("Reminders", "sent = ? AND remind_at <= ?", false, now).
		Find(&interviews).Error
	return interviews, err
}

// ClaimReminder 条件更新 sent=false -> true，只有抢到的扫描才投递
func (r *InterviewRepository) ClaimReminder(ctx context.Context, reminderID uint, now time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.InterviewReminder{}).
		Where("id = ? AND sent = ?", reminderID, false).
		Updates(map[string]interface{}{"sent": true, "sent_at": now, "error": ""})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseReminder 投递失败后释放，保留错误信息，下次扫描重试
func (r *InterviewRepository) ReleaseReminder(ctx context.Context, reminderID uint, errMsg string) error {
	return r.DB.WithContext(ctx).Model(&model.InterviewReminder{}).
		Where("id = ?", reminderID).
		Updates(map[string]interface{}{"sent": false, "sent_at": nil, "error": errMsg}).Error
}

func (r *InterviewRepository) ListReminders(interviewID string) ([]model.InterviewReminder, error) {
	var reminders []model.InterviewReminder
	err := r.DB.Where("interview_id = ?", interviewID).Order("remind_at asc").Find(&reminders).Error
	return reminders, err
}
