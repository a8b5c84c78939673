package repository

import (
	"talent_match_backend/internal/model"

	"gorm.io/gorm"
)

type JobRepository struct {
	DB *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{DB: db}
}

func (r *JobRepository) Create(job *model.Job) error {
	return r.DB.Create(job).Error
}

func (r *JobRepository) FindByID(id uint) (*model.Job, error) {
	var job model.Job
	err := r.DB.First(&job, id).Error
	return &job, err
}

func (r *JobRepository) Update(job *model.Job) error {
	return r.DB.Save(job).Error
}

type JobFilter struct {
	ExpertiseTag string
	EmployerID   uint
	OpenOnly     bool
}

func (r *JobRepository) List(filter JobFilter, page, limit int) ([]model.Job, int64, error) {
	query := r.DB.Model(&model.Job{})
	if filter.ExpertiseTag != "" {
		query = query.Where("expertise_tag = ?", filter.ExpertiseTag)
	}
	if filter.EmployerID != 0 {
		query = query.Where("employer_id = ?", filter.EmployerID)
	}
	if filter.OpenOnly {
		query = query.Where("is_open = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []model.Job
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&jobs).Error
	return jobs, total, err
}
