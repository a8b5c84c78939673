package repository

import (
	"talent_match_backend/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) WithTx(tx *gorm.DB) *TestRepository {
	return &TestRepository{DB: tx}
}

// CreateTest 同时写入 Questions
func (r *TestRepository) CreateTest(test *model.TestDefinition) error {
	return r.DB.Create(test).Error
}

func preloadQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("position asc, created_at asc")
}

func (r *TestRepository) FindTestByID(id string) (*model.TestDefinition, error) {
	var test model.TestDefinition
	err := r.DB.Preload("Questions", preloadQuestions).First(&test, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *TestRepository) ListByEmployer(employerID uint, testType model.TestType) ([]model.TestDefinition, error) {
	var tests []model.TestDefinition
	query := r.DB.Where("employer_id = ?", employerID)
	if testType != "" {
		query = query.Where("type = ?", testType)
	}
	err := query.Order("created_at desc").Find(&tests).Error
	return tests, err
}

// ListEligibleForCandidate 入职测试 + 分配给该候选人的副本，仅 active
func (r *TestRepository) ListEligibleForCandidate(candidateID uint) ([]model.TestDefinition, error) {
	var tests []model.TestDefinition
	err := r.DB.Where("is_active = ?", true).
		Where("type = ? OR (type = ? AND assigned_candidate_id = ?)", model.TestOnboarding, model.TestEmployerCustom, candidateID).
		Order("created_at desc").
		Find(&tests).Error
	return tests, err
}

func (r *TestRepository) Deactivate(id string) error {
	return r.DB.Model(&model.TestDefinition{}).Where("id = ?", id).Update("is_active", false).Error
}

func (r *TestRepository) DeleteTest(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", id).Delete(&model.TestQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.TestDefinition{}, "id = ?", id).Error
	})
}

func (r *TestRepository) CountResults(testID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TestResult{}).Where("test_id = ?", testID).Count(&count).Error
	return count, err
}

// FindResult 没有结果时返回 nil, nil
func (r *TestRepository) FindResult(candidateID uint, testID string) (*model.TestResult, error) {
	var result model.TestResult
	err := r.DB.Where("candidate_id = ? AND test_id = ?", candidateID, testID).First(&result).Error
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateResult 同时写入 Answers；唯一索引冲突由调用方识别
func (r *TestRepository) CreateResult(result *model.TestResult) error {
	return r.DB.Omit("Test").Create(result).Error
}

func (r *TestRepository) FindResultByID(id string) (*model.TestResult, error) {
	var result model.TestResult
	err := r.DB.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).First(&result, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *TestRepository) ListResultsByCandidate(candidateID uint) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.DB.Preload("Test").Where("candidate_id = ?", candidateID).Order("completed_at desc").Find(&results).Error
	return results, err
}

func (r *TestRepository) ListResultsByEmployer(employerID uint) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.DB.Preload("Test").Where("employer_id = ?", employerID).Order("completed_at desc").Find(&results).Error
	return results, err
}
