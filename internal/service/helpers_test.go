package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"talent_match_backend/internal/config"
	"talent_match_backend/internal/model"
	"talent_match_backend/internal/repository"
	"talent_match_backend/pkg/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Tests:        config.TestsConfig{DefaultPassingScore: 70},
		Notification: config.NotificationConfig{Channels: []string{model.ChannelInApp}, AppBaseURL: "https://app.example.com/"},
	}
}

func createUser(t *testing.T, db *gorm.DB, name string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "x",
		Role:     role,
	}
	if role == model.Employer {
		u.CompanyName = name + " Inc"
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

type sentMessage struct {
	To  Recipient
	Msg NotificationMessage
}

// fakeNotifier 记录发送内容，failures > 0 时前几次返回错误
type fakeNotifier struct {
	mu       sync.Mutex
	sent     []sentMessage
	failures int
}

func (f *fakeNotifier) Send(ctx context.Context, to Recipient, msg NotificationMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("smtp timeout")
	}
	f.sent = append(f.sent, sentMessage{To: to, Msg: msg})
	return nil
}

func (f *fakeNotifier) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type testFixture struct {
	db        *gorm.DB
	cfg       *config.Config
	notifier  *fakeNotifier
	employer  *model.User
	candidate *model.User
	tests     *TestService
	apps      *ApplicationService
	jobs      *JobService
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	db := newTestDB(t)
	cfg := testConfig()
	notifier := &fakeNotifier{}

	userRepo := repository.NewUserRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	jobRepo := repository.NewJobRepository(db)

	f := &testFixture{
		db:        db,
		cfg:       cfg,
		notifier:  notifier,
		employer:  createUser(t, db, "Acme", model.Employer),
		candidate: createUser(t, db, "Dana", model.Candidate),
		tests:     NewTestService(db, repository.NewTestRepository(db), appRepo, userRepo, notifier, cfg),
		apps:      NewApplicationService(appRepo, jobRepo, userRepo, notifier),
		jobs:      NewJobService(jobRepo),
	}
	f.tests.now = fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return f
}

// tenQuestionTemplate 答案依次为 "a0".."a9"
func (f *testFixture) tenQuestionTemplate(t *testing.T) *model.TestDefinition {
	t.Helper()
	req := CreateTestTemplateRequest{Title: "Go fundamentals", ExpertiseTag: "golang"}
	for i := 0; i < 10; i++ {
		req.Questions = append(req.Questions, QuestionInput{
			Prompt:        fmt.Sprintf("Question %d", i),
			Options:       []string{fmt.Sprintf("a%d", i), "other"},
			CorrectAnswer: fmt.Sprintf("a%d", i),
		})
	}
	tmpl, err := f.tests.CreateTemplate(f.employer.ID, req)
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	return tmpl
}
