package service

import (
	"context"
	"io"
	"time"

	"talent_match_backend/internal/model"
	"talent_match_backend/internal/repository"
	"talent_match_backend/internal/util"
	"talent_match_backend/pkg/logger"

	"go.uber.org/zap"
)

// UserService 处理用户资料和简历
type UserService struct {
	UserRepo *repository.UserRepository
	Storage  *StorageService
}

func NewUserService(userRepo *repository.UserRepository, storage *StorageService) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Storage:  storage,
	}
}

func (s *UserService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfileRequest 允许修改的资料字段
// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	Name         *string `json:"name"`
	CompanyName  *string `json:"companyName"`
	ExpertiseTag *string `json:"expertiseTag"`
}

func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, util.Validation("name cannot be empty")
		}
		user.Name = *req.Name
	}
	if req.CompanyName != nil && user.Role == model.Employer {
		user.CompanyName = *req.CompanyName
	}
	if req.ExpertiseTag != nil {
		user.ExpertiseTag = *req.ExpertiseTag
	}
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadResume 上传简历并替换旧文件
func (s *UserService) UploadResume(ctx context.Context, candidateID uint, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if size > util.MaxResumeSize {
		return "", util.Validation("resume exceeds %d MB", util.MaxResumeSize>>20)
	}
	user, err := s.GetUserByID(candidateID)
	if err != nil {
		return "", err
	}
	if user.Role != model.Candidate {
		return "", util.Validation("only candidates can upload a resume")
	}

	object, err := ResumeObjectName(candidateID, filename, time.Now().UTC())
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = util.MimeOctetStream
	}
	url, err := s.Storage.Put(ctx, object, reader, size, contentType)
	if err != nil {
		return "", err
	}
	if err := s.UserRepo.UpdateResume(candidateID, url, object); err != nil {
		// 记录没写进去，新对象成了孤儿
		s.Storage.Remove(ctx, object)
		return "", err
	}
	if user.ResumeObject != "" && user.ResumeObject != object {
		if err := s.Storage.Remove(ctx, user.ResumeObject); err != nil {
			logger.Log.Warn("Failed to remove previous resume", zap.String("object", user.ResumeObject), zap.Error(err))
		}
	}
	logger.Log.Info("Resume uploaded", zap.Uint("candidateId", candidateID), zap.String("object", object))
	return url, nil
}
