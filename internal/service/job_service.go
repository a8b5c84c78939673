package service

import (
	"strings"

	"talent_match_backend/internal/model"
	"talent_match_backend/internal/repository"
	"talent_match_backend/internal/util"

	"github.com/jinzhu/copier"
)

// JobRequest 创建/修改职位
// swagger:model JobRequest
type JobRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	ExpertiseTag string `json:"expertiseTag"`
}

type JobService struct {
	JobRepo *repository.JobRepository
}

func NewJobService(jobRepo *repository.JobRepository) *JobService {
	return &JobService{JobRepo: jobRepo}
}

func (s *JobService) Create(employerID uint, req JobRequest) (*model.Job, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, util.Validation("title is required")
	}
	job := &model.Job{EmployerID: employerID, IsOpen: true}
	if err := copier.Copy(job, &req); err != nil {
		return nil, err
	}
	if err := s.JobRepo.Create(job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobService) Get(id uint) (*model.Job, error) {
	job, err := s.JobRepo.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

func (s *JobService) List(filter repository.JobFilter, page, limit int) ([]model.Job, int64, error) {
	return s.JobRepo.List(filter, page, limit)
}

func (s *JobService) Update(employerID, id uint, req JobRequest) (*model.Job, error) {
	job, err := s.ownedJob(employerID, id)
	if err != nil {
		return nil, err
	}
	if err := copier.CopyWithOption(job, &req, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, err
	}
	if err := s.JobRepo.Update(job); err != nil {
		return nil, err
	}
	return job, nil
}

// Close 关闭职位，不再接受申请
func (s *JobService) Close(employerID, id uint) error {
	job, err := s.ownedJob(employerID, id)
	if err != nil {
		return err
	}
	job.IsOpen = false
	return s.JobRepo.Update(job)
}

func (s *JobService) ownedJob(employerID, id uint) (*model.Job, error) {
	job, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != employerID {
		return nil, util.ErrJobNotFound
	}
	return job, nil
}
