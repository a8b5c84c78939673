package repository

import (
	"talent_match_backend/internal/model"

	"gorm.io/gorm"
)

type ApplicationRepository struct {
	DB *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{DB: db}
}

// WithTx 返回绑定到事务的仓储
func (r *ApplicationRepository) WithTx(tx *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{DB: tx}
}

func (r *ApplicationRepository) Create(app *model.Application) error {
	return r.DB.Create(app).Error
}

func (r *ApplicationRepository) FindByID(id uint) (*model.Application, error) {
	var app model.Application
	err := r.DB.Preload("Job").First(&app, id).Error
	return &app, err
}

func (r *ApplicationRepository) FindByJobAndCandidate(jobID, candidateID uint) (*model.Application, error) {
	var app model.Application
	err := r.DB.Where("job_id = ? AND candidate_id = ?", jobID, candidateID).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) ListByJob(jobID uint) ([]model.Application, error) {
	var apps []model.Application
	err := r.DB.Where("job_id = ?", jobID).Order("created_at desc").Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) ListByCandidate(candidateID uint) ([]model.Application, error) {
	var apps []model.Application
	err := r.DB.Preload("Job").Where("candidate_id = ?", candidateID).Order("created_at desc").Find(&apps).Error
	return apps, err
}

// LatestBetween 雇主与候选人之间最近的一条申请，没有时返回 nil, nil
func (r *ApplicationRepository) LatestBetween(employerID, candidateID uint) (*model.Application, error) {
	var app model.Application
	err := r.DB.Where("employer_id = ? AND candidate_id = ?", employerID, candidateID).
		Order("created_at desc, id desc").
		First(&app).Error
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) UpdateStatus(id uint, status model.ApplicationStatus) error {
	return r.DB.Model(&model.Application{}).Where("id = ?", id).Update("status", status).Error
}
