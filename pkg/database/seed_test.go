package database

import (
	"os"
	"path/filepath"
	"testing"

	"talent_match_backend/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const seedYAML = `title: Onboarding
expertise_tag: general
questions:
  - prompt: 2 + 2?
    options: ["3", "4"]
    answer: "4"
  - prompt: Capital of France?
    answer: Paris
`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "onboarding.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestLoadOnboardingSeed(t *testing.T) {
	test, err := LoadOnboardingSeed(writeSeed(t, seedYAML), 70)
	if err != nil {
		t.Fatalf("LoadOnboardingSeed: %v", err)
	}
	if test.Type != model.TestOnboarding || test.PassingScore != 70 || !test.IsActive {
		t.Fatalf("unexpected definition: %+v", test)
	}
	if len(test.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(test.Questions))
	}
	if test.Questions[1].Position != 1 || test.Questions[1].CorrectAnswer != "Paris" || len(test.Questions[1].Options) != 0 {
		t.Fatalf("unexpected second question: %+v", test.Questions[1])
	}

	if _, err := LoadOnboardingSeed(writeSeed(t, "title: Empty\n"), 70); err == nil {
		t.Fatal("expected error for seed without questions")
	}
}

func TestSeedOnboardingTestIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:seed_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := SeedOnboardingTest(db, filepath.Join(t.TempDir(), "missing.yaml"), 70); err != nil {
		t.Fatalf("missing seed file should be skipped, got %v", err)
	}

	path := writeSeed(t, seedYAML)
	for i := 0; i < 2; i++ {
		if err := SeedOnboardingTest(db, path, 70); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}
	var count int64
	db.Model(&model.TestDefinition{}).Where("type = ?", model.TestOnboarding).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one onboarding test, got %d", count)
	}
}
