package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"talent_match_backend/internal/model"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type onboardingSeed struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	PassingScore int    `yaml:"passing_score"`
	TimeLimit    int    `yaml:"time_limit"`
	ExpertiseTag string `yaml:"expertise_tag"`
	Questions    []struct {
		Prompt  string   `yaml:"prompt"`
		Options []string `yaml:"options"`
		Answer  string   `yaml:"answer"`
	} `yaml:"questions"`
}

// LoadOnboardingSeed 解析入职测试 YAML
func LoadOnboardingSeed(path string, defaultPassingScore int) (*model.TestDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var seed onboardingSeed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse onboarding seed %s: %w", path, err)
	}
	if seed.Title == "" || len(seed.Questions) == 0 {
		return nil, fmt.Errorf("onboarding seed %s needs a title and at least one question", path)
	}
	if seed.PassingScore == 0 {
		seed.PassingScore = defaultPassingScore
	}

	test := &model.TestDefinition{
		Title:        seed.Title,
		Description:  seed.Description,
		Type:         model.TestOnboarding,
		PassingScore: seed.PassingScore,
		TimeLimit:    seed.TimeLimit,
		ExpertiseTag: seed.ExpertiseTag,
		IsActive:     true,
	}
	for i, q := range seed.Questions {
		var options datatypes.JSON
		if len(q.Options) > 0 {
			options, err = json.Marshal(q.Options)
			if err != nil {
				return nil, err
			}
		}
		test.Questions = append(test.Questions, model.TestQuestion{
			Prompt:        q.Prompt,
			Options:       options,
			CorrectAnswer: q.Answer,
			Position:      i,
		})
	}
	return test, nil
}

// SeedOnboardingTest 没有任何入职测试时写入默认模板
func SeedOnboardingTest(db *gorm.DB, path string, defaultPassingScore int) error {
	if path == "" {
		return nil
	}

	var count int64
	if err := db.Model(&model.TestDefinition{}).Where("type = ?", model.TestOnboarding).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	test, err := LoadOnboardingSeed(path, defaultPassingScore)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("Onboarding seed %s not found, skipping", path)
			return nil
		}
		return err
	}

	if err := db.Create(test).Error; err != nil {
		return err
	}
	log.Printf("Seeded onboarding test %q with %d questions", test.Title, len(test.Questions))
	return nil
}
