package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"talent_match_backend/internal/config"
	"talent_match_backend/internal/model"
	"talent_match_backend/internal/repository"
	"talent_match_backend/internal/util"
	"talent_match_backend/pkg/logger"
	"talent_match_backend/pkg/monitoring"
	"talent_match_backend/pkg/tracing"

	"github.com/jinzhu/copier"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionInput 创建模板时的题目
// swagger:model QuestionInput
type QuestionInput struct {
	Prompt        string   `json:"prompt" binding:"required"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer" binding:"required"`
}

// CreateTestTemplateRequest 雇主创建测试模板
// swagger:model CreateTestTemplateRequest
type CreateTestTemplateRequest struct {
	Title        string          `json:"title" binding:"required"`
	Description  string          `json:"description"`
	PassingScore *int            `json:"passingScore"`
	TimeLimit    int             `json:"timeLimit"`
	ExpertiseTag string          `json:"expertiseTag"`
	Questions    []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// CandidateQuestion 下发给候选人的题目，不含正确答案
type CandidateQuestion struct {
	ID       string         `json:"id"`
	Prompt   string         `json:"prompt"`
	Options  datatypes.JSON `json:"options,omitempty"`
	Position int            `json:"position"`
}

// CandidateTestView 候选人看到的测试
type CandidateTestView struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Type         model.TestType      `json:"type"`
	PassingScore int                 `json:"passingScore"`
	TimeLimit    int                 `json:"timeLimit"`
	ExpertiseTag string              `json:"expertiseTag"`
	Completed    bool                `json:"completed"`
	Questions    []CandidateQuestion `json:"questions,omitempty"`
}

// SubmitTestResponse 提交结果
type SubmitTestResponse struct {
	ResultID string `json:"resultId"`
	Score    int    `json:"score"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message"`
}

type TestService struct {
	DB       *gorm.DB
	TestRepo *repository.TestRepository
	AppRepo  *repository.ApplicationRepository
	UserRepo *repository.UserRepository
	Notifier NotificationSender
	Cfg      *config.Config

	now func() time.Time
}

func NewTestService(
	db *gorm.DB,
	testRepo *repository.TestRepository,
	appRepo *repository.ApplicationRepository,
	userRepo *repository.UserRepository,
	notifier NotificationSender,
	cfg *config.Config,
) *TestService {
	return &TestService{
		DB:       db,
		TestRepo: testRepo,
		AppRepo:  appRepo,
		UserRepo: userRepo,
		Notifier: notifier,
		Cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *TestService) defaultPassingScore() int {
	if s.Cfg != nil && s.Cfg.Tests.DefaultPassingScore > 0 {
		return s.Cfg.Tests.DefaultPassingScore
	}
	return model.DefaultPassingScore
}

// CreateTemplate 创建雇主测试模板
func (s *TestService) CreateTemplate(employerID uint, req CreateTestTemplateRequest) (*model.TestDefinition, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, util.Validation("title is required")
	}
	if len(req.Questions) == 0 {
		return nil, util.Validation("at least one question is required")
	}
	passing := s.defaultPassingScore()
	if req.PassingScore != nil {
		passing = *req.PassingScore
	}
	if passing < 0 || passing > 100 {
		return nil, util.Validation("passingScore must be between 0 and 100")
	}

	test := &model.TestDefinition{
		Title:        req.Title,
		Description:  req.Description,
		Type:         model.TestTemplate,
		PassingScore: passing,
		TimeLimit:    req.TimeLimit,
		ExpertiseTag: req.ExpertiseTag,
		IsActive:     true,
		EmployerID:   &employerID,
	}
	for i, q := range req.Questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return nil, util.Validation("question %d has an empty prompt", i+1)
		}
		var options datatypes.JSON
		if len(q.Options) > 0 {
			raw, err := json.Marshal(q.Options)
			if err != nil {
				return nil, err
			}
			options = datatypes.JSON(raw)
		}
		test.Questions = append(test.Questions, model.TestQuestion{
			Prompt:        q.Prompt,
			Options:       options,
			CorrectAnswer: q.CorrectAnswer,
			Position:      i,
		})
	}

	if err := s.TestRepo.CreateTest(test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *TestService) ListTemplates(employerID uint) ([]model.TestDefinition, error) {
	return s.TestRepo.ListByEmployer(employerID, model.TestTemplate)
}

// GetTestForEmployer 雇主查看自己的模板或分配副本（含答案）
func (s *TestService) GetTestForEmployer(employerID uint, testID string) (*model.TestDefinition, error) {
	test, err := s.findTest(testID)
	if err != nil {
		return nil, err
	}
	if test.EmployerID == nil || *test.EmployerID != employerID {
		return nil, util.ErrTestNotFound
	}
	return test, nil
}

// GetTestForCandidate 候选人视角，隐藏正确答案
func (s *TestService) GetTestForCandidate(candidateID uint, testID string) (*CandidateTestView, error) {
	test, err := s.findTest(testID)
	if err != nil {
		return nil, err
	}
	if !test.IsActive || !candidateMayTake(test, candidateID) {
		return nil, util.ErrTestNotFound
	}
	result, err := s.TestRepo.FindResult(candidateID, test.ID)
	if err != nil {
		return nil, err
	}

	view := toCandidateView(test)
	view.Completed = result != nil
	for _, q := range test.Questions {
		var cq CandidateQuestion
		if err := copier.Copy(&cq, &q); err != nil {
			return nil, err
		}
		view.Questions = append(view.Questions, cq)
	}
	return view, nil
}

// ListEligible 候选人可做的测试列表
func (s *TestService) ListEligible(candidateID uint) ([]CandidateTestView, error) {
	tests, err := s.TestRepo.ListEligibleForCandidate(candidateID)
	if err != nil {
		return nil, err
	}
	views := make([]CandidateTestView, 0, len(tests))
	for i := range tests {
		result, err := s.TestRepo.FindResult(candidateID, tests[i].ID)
		if err != nil {
			return nil, err
		}
		v := toCandidateView(&tests[i])
		v.Completed = result != nil
		views = append(views, *v)
	}
	return views, nil
}

// DeactivateTest 已有结果的测试只停用，否则直接删除；返回是否被删除
func (s *TestService) DeactivateTest(employerID uint, testID string) (bool, error) {
	test, err := s.GetTestForEmployer(employerID, testID)
	if err != nil {
		return false, err
	}
	count, err := s.TestRepo.CountResults(test.ID)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, s.TestRepo.Deactivate(test.ID)
	}
	return true, s.TestRepo.DeleteTest(test.ID)
}

// AssignTest 把模板深拷贝成候选人专属副本，返回副本 ID
func (s *TestService) AssignTest(ctx context.Context, employerID, candidateID uint, templateID string) (string, error) {
	ctx, span := tracing.Tracer.Start(ctx, "TestService.AssignTest")
	defer span.End()

	template, err := s.findTest(templateID)
	if err != nil {
		return "", err
	}
	if template.Type != model.TestTemplate || !template.IsActive ||
		template.EmployerID == nil || *template.EmployerID != employerID {
		return "", util.ErrTestNotFound
	}

	candidate, err := s.UserRepo.FindByID(candidateID)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", util.ErrUserNotFound
		}
		return "", err
	}
	if candidate.Role != model.Candidate {
		return "", util.Validation("user %d is not a candidate", candidateID)
	}

	clone := cloneTest(template, candidateID)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.TestRepo.WithTx(tx).CreateTest(clone); err != nil {
			return err
		}
		appRepo := s.AppRepo.WithTx(tx)
		app, err := appRepo.LatestBetween(employerID, candidateID)
		if err != nil {
			return err
		}
		if app != nil {
			return appRepo.UpdateStatus(app.ID, model.ApplicationTestSent)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.String("test.clone_id", clone.ID))

	msg := NotificationMessage{
		Type:  util.NotificationTestAssigned,
		Title: "New assessment assigned",
		Body:  fmt.Sprintf("You have been assigned the test %q.", clone.Title),
		Link:  s.testLink(clone.ID),
	}
	if err := s.Notifier.Send(ctx, recipientOf(candidate), msg); err != nil {
		logger.Log.Warn("Failed to notify candidate about assigned test",
			zap.Uint("candidateId", candidateID), zap.String("testId", clone.ID), zap.Error(err))
	}

	return clone.ID, nil
}

// SubmitTest 评分并持久化结果，同一候选人同一测试只能提交一次
func (s *TestService) SubmitTest(ctx context.Context, candidateID uint, testID string, answers map[string]interface{}) (*SubmitTestResponse, error) {
	ctx, span := tracing.Tracer.Start(ctx, "TestService.SubmitTest")
	defer span.End()

	if len(answers) == 0 {
		return nil, util.ErrNoAnswers
	}

	test, err := s.findTest(testID)
	if err != nil {
		return nil, err
	}
	if !test.IsActive || !candidateMayTake(test, candidateID) {
		return nil, util.ErrTestNotFound
	}

	existing, err := s.TestRepo.FindResult(candidateID, test.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, util.ErrTestAlreadyCompleted
	}

	submission := NormalizeAnswers(answers)
	outcome := Grade(test.Questions, submission, test.PassingScore)

	result := &model.TestResult{
		TestID:         test.ID,
		CandidateID:    candidateID,
		EmployerID:     test.EmployerID,
		TemplateTestID: test.ClonedFromID,
		Score:          outcome.Score,
		PassingScore:   test.PassingScore,
		Passed:         outcome.Passed,
		CompletedAt:    s.now(),
		Answers:        buildAnswerRows(test.Questions, submission),
	}
	if err := s.TestRepo.CreateResult(result); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, util.ErrTestAlreadyCompleted
		}
		span.RecordError(err)
		return nil, err
	}

	monitoring.TestsGraded.WithLabelValues(strconv.FormatBool(outcome.Passed)).Inc()
	span.SetAttributes(
		attribute.Int("test.score", outcome.Score),
		attribute.Bool("test.passed", outcome.Passed),
	)
	logger.Log.Info("Test graded",
		zap.String("testId", test.ID),
		zap.Uint("candidateId", candidateID),
		zap.Int("score", outcome.Score),
		zap.Bool("passed", outcome.Passed),
	)

	if test.EmployerID != nil {
		s.notifyEmployerOfResult(ctx, *test.EmployerID, test, candidateID, outcome)
	}

	return &SubmitTestResponse{
		ResultID: result.ID,
		Score:    outcome.Score,
		Passed:   outcome.Passed,
		Message:  resultMessage(outcome.Score, test.PassingScore, outcome.Passed),
	}, nil
}

func (s *TestService) notifyEmployerOfResult(ctx context.Context, employerID uint, test *model.TestDefinition, candidateID uint, outcome GradeOutcome) {
	employer, err := s.UserRepo.FindByID(employerID)
	if err != nil {
		logger.Log.Warn("Employer lookup failed after grading", zap.Uint("employerId", employerID), zap.Error(err))
		return
	}
	msg := NotificationMessage{
		Type:     util.NotificationTestCompleted,
		Title:    "Assessment completed",
		Body:     fmt.Sprintf("Candidate #%d completed %q with a score of %d%%.", candidateID, test.Title, outcome.Score),
		Link:     s.appLink("/employer/tests/" + test.ID + "/results"),
		Channels: []string{model.ChannelInApp},
	}
	if err := s.Notifier.Send(ctx, recipientOf(employer), msg); err != nil {
		logger.Log.Warn("Failed to notify employer about test result", zap.Uint("employerId", employerID), zap.Error(err))
	}
}

func (s *TestService) GetMyResults(candidateID uint) ([]model.TestResult, error) {
	results, err := s.TestRepo.ListResultsByCandidate(candidateID)
	if err != nil {
		return nil, err
	}
	for i := range results {
		hideAnswers(&results[i].Test)
	}
	return results, nil
}

func (s *TestService) ListResultsForEmployer(employerID uint) ([]model.TestResult, error) {
	return s.TestRepo.ListResultsByEmployer(employerID)
}

// GetResult 候选人只能看自己的结果，雇主只能看自己测试的结果
func (s *TestService) GetResult(userID uint, role model.UserRole, resultID string) (*model.TestResult, error) {
	result, err := s.TestRepo.FindResultByID(resultID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	switch role {
	case model.Admin:
	case model.Employer:
		if result.EmployerID == nil || *result.EmployerID != userID {
			return nil, util.ErrTestNotFound
		}
	default:
		if result.CandidateID != userID {
			return nil, util.ErrTestNotFound
		}
	}
	return result, nil
}

func (s *TestService) findTest(testID string) (*model.TestDefinition, error) {
	test, err := s.TestRepo.FindTestByID(testID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	return test, nil
}

func (s *TestService) testLink(testID string) string {
	return s.appLink("/candidate/tests/" + testID)
}

func (s *TestService) appLink(path string) string {
	base := ""
	if s.Cfg != nil {
		base = strings.TrimRight(s.Cfg.Notification.AppBaseURL, "/")
	}
	return base + path
}

// candidateMayTake 入职测试对所有候选人开放；分配副本只对被分配人开放
func candidateMayTake(test *model.TestDefinition, candidateID uint) bool {
	switch test.Type {
	case model.TestOnboarding:
		return true
	case model.TestEmployerCustom:
		return test.AssignedCandidateID != nil && *test.AssignedCandidateID == candidateID
	default:
		return false
	}
}

// cloneTest 深拷贝模板，题目和选项不与模板共享任何数据
func cloneTest(src *model.TestDefinition, candidateID uint) *model.TestDefinition {
	templateID := src.ID
	clone := &model.TestDefinition{
		Title:               src.Title,
		Description:         src.Description,
		Type:                model.TestEmployerCustom,
		PassingScore:        src.PassingScore,
		TimeLimit:           src.TimeLimit,
		ExpertiseTag:        src.ExpertiseTag,
		IsActive:            true,
		AssignedCandidateID: &candidateID,
		ClonedFromID:        &templateID,
	}
	if src.EmployerID != nil {
		employerID := *src.EmployerID
		clone.EmployerID = &employerID
	}
	clone.Questions = make([]model.TestQuestion, 0, len(src.Questions))
	for _, q := range src.Questions {
		var options datatypes.JSON
		if q.Options != nil {
			options = append(datatypes.JSON(nil), q.Options...)
		}
		clone.Questions = append(clone.Questions, model.TestQuestion{
			Prompt:        q.Prompt,
			Options:       options,
			CorrectAnswer: q.CorrectAnswer,
			Position:      q.Position,
		})
	}
	return clone
}

func toCandidateView(test *model.TestDefinition) *CandidateTestView {
	return &CandidateTestView{
		ID:           test.ID,
		Title:        test.Title,
		Description:  test.Description,
		Type:         test.Type,
		PassingScore: test.PassingScore,
		TimeLimit:    test.TimeLimit,
		ExpertiseTag: test.ExpertiseTag,
	}
}

func hideAnswers(test *model.TestDefinition) {
	for i := range test.Questions {
		test.Questions[i].CorrectAnswer = ""
	}
}

func resultMessage(score, passingScore int, passed bool) string {
	if passed {
		return fmt.Sprintf("Congratulations, you passed with a score of %d%%.", score)
	}
	return fmt.Sprintf("You scored %d%%. The passing score is %d%%.", score, passingScore)
}
