package service

import (
	"context"
	"fmt"

	"talent_match_backend/internal/model"
	"talent_match_backend/internal/repository"
	"talent_match_backend/internal/util"
	"talent_match_backend/pkg/logger"

	"go.uber.org/zap"
)

type ApplicationService struct {
	AppRepo  *repository.ApplicationRepository
	JobRepo  *repository.JobRepository
	UserRepo *repository.UserRepository
	Notifier NotificationSender
}

func NewApplicationService(
	appRepo *repository.ApplicationRepository,
	jobRepo *repository.JobRepository,
	userRepo *repository.UserRepository,
	notifier NotificationSender,
) *ApplicationService {
	return &ApplicationService{
		AppRepo:  appRepo,
		JobRepo:  jobRepo,
		UserRepo: userRepo,
		Notifier: notifier,
	}
}

// Apply 同一职位只能申请一次
func (s *ApplicationService) Apply(candidateID, jobID uint, coverLetter string) (*model.Application, error) {
	job, err := s.JobRepo.FindByID(jobID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrJobNotFound
		}
		return nil, err
	}
	if !job.IsOpen {
		return nil, util.Validation("job is closed")
	}

	if _, err := s.AppRepo.FindByJobAndCandidate(jobID, candidateID); err == nil {
		return nil, util.ErrAlreadyApplied
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	app := &model.Application{
		JobID:       jobID,
		CandidateID: candidateID,
		EmployerID:  job.EmployerID,
		Status:      model.ApplicationApplied,
		CoverLetter: coverLetter,
	}
	if err := s.AppRepo.Create(app); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, util.ErrAlreadyApplied
		}
		return nil, err
	}
	return app, nil
}

func (s *ApplicationService) ListMine(candidateID uint) ([]model.Application, error) {
	return s.AppRepo.ListByCandidate(candidateID)
}

func (s *ApplicationService) ListForJob(employerID, jobID uint) ([]model.Application, error) {
	job, err := s.JobRepo.FindByID(jobID)
	if err != nil || job.EmployerID != employerID {
		return nil, util.ErrJobNotFound
	}
	return s.AppRepo.ListByJob(jobID)
}

// UpdateStatus 雇主推进申请状态，候选人只能撤回
func (s *ApplicationService) UpdateStatus(ctx context.Context, userID uint, role model.UserRole, appID uint, status model.ApplicationStatus) (*model.Application, error) {
	if !status.IsValid() {
		return nil, util.Validation("invalid application status %q", status)
	}
	app, err := s.AppRepo.FindByID(appID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrApplicationNotFound
		}
		return nil, err
	}

	switch {
	case role == model.Employer && app.EmployerID == userID:
	case role == model.Candidate && app.CandidateID == userID:
		if status != model.ApplicationWithdrawn {
			return nil, fmt.Errorf("%w: candidates may only withdraw", util.ErrForbidden)
		}
	default:
		return nil, util.ErrApplicationNotFound
	}

	if err := s.AppRepo.UpdateStatus(app.ID, status); err != nil {
		return nil, err
	}
	app.Status = status

	if role == model.Employer {
		s.notifyCandidate(ctx, app)
	}
	return app, nil
}

func (s *ApplicationService) notifyCandidate(ctx context.Context, app *model.Application) {
	candidate, err := s.UserRepo.FindByID(app.CandidateID)
	if err != nil {
		logger.Log.Warn("Candidate lookup failed", zap.Uint("candidateId", app.CandidateID), zap.Error(err))
		return
	}
	msg := NotificationMessage{
		Type:     util.NotificationApplicationUpdate,
		Title:    "Application updated",
		Body:     fmt.Sprintf("Your application for %q is now %s.", app.Job.Title, app.Status),
		Channels: []string{model.ChannelInApp},
	}
	if err := s.Notifier.Send(ctx, recipientOf(candidate), msg); err != nil {
		logger.Log.Warn("Failed to notify candidate about application", zap.Uint("applicationId", app.ID), zap.Error(err))
	}
}
