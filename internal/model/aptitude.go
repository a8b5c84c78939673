package model

import (
	"time"

	"gorm.io/datatypes"
)

type TestType string

const (
	TestOnboarding     TestType = "onboarding"      // 系统内置，每位候选人做一次
	TestTemplate       TestType = "template"        // 雇主编写的模板
	TestEmployerCustom TestType = "employer_custom" // 分配给某位候选人的模板副本
)

const DefaultPassingScore = 70

// TestDefinition 能力测试定义（模板或分配副本）
type TestDefinition struct {
	UUIDBase
	Title               string         `gorm:"size:255;not null" json:"title"`
	Description         string         `gorm:"type:text" json:"description"`
	Type                TestType       `gorm:"size:20;not null;index" json:"type"`
	PassingScore        int            `gorm:"not null" json:"passingScore"`
	TimeLimit           int            `gorm:"default:0" json:"timeLimit"` // 分钟
	ExpertiseTag        string         `gorm:"size:50;index" json:"expertiseTag"`
	IsActive            bool           `gorm:"not null;index" json:"isActive"`
	EmployerID          *uint          `gorm:"index" json:"employerId,omitempty"`
	AssignedCandidateID *uint          `gorm:"index" json:"assignedCandidateId,omitempty"`
	ClonedFromID        *string        `gorm:"type:varchar(36);index" json:"clonedFromId,omitempty"`
	Questions           []TestQuestion `gorm:"foreignKey:TestID" json:"questions,omitempty"`
}

func (TestDefinition) TableName() string {
	return "test_definitions"
}

// TestQuestion 题目，CorrectAnswer 永远不下发给候选人
type TestQuestion struct {
	UUIDBase
	TestID        string         `gorm:"index;type:varchar(36);not null" json:"testId"`
	Prompt        string         `gorm:"type:text;not null" json:"prompt"`
	Options       datatypes.JSON `gorm:"type:json" json:"options,omitempty"`
	CorrectAnswer string         `gorm:"type:text;not null" json:"correctAnswer,omitempty"`
	Position      int            `gorm:"default:0" json:"position"`
}

func (TestQuestion) TableName() string {
	return "test_questions"
}

// TestResult 一经创建不可修改；(candidate_id, test_id) 唯一
type TestResult struct {
	UUIDBase
	TestID         string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_test_results_candidate_test" json:"testId"`
	Test           TestDefinition `gorm:"foreignKey:TestID" json:"test,omitempty"`
	CandidateID    uint           `gorm:"not null;uniqueIndex:idx_test_results_candidate_test" json:"candidateId"`
	EmployerID     *uint          `gorm:"index" json:"employerId,omitempty"`
	TemplateTestID *string        `gorm:"type:varchar(36);index" json:"templateTestId,omitempty"`
	Score          int            `gorm:"not null" json:"score"`
	PassingScore   int            `gorm:"not null" json:"passingScore"`
	Passed         bool           `gorm:"not null" json:"passed"`
	CompletedAt    time.Time      `gorm:"not null" json:"completedAt"`
	Answers        []TestAnswer   `gorm:"foreignKey:ResultID" json:"answers,omitempty"`
}

func (TestResult) TableName() string {
	return "test_results"
}

type TestAnswer struct {
	UUIDBase
	ResultID      string `gorm:"index;type:varchar(36);not null" json:"resultId"`
	QuestionID    string `gorm:"type:varchar(36);not null" json:"questionId"`
	SelectedValue string `gorm:"type:text" json:"selectedValue"`
	IsCorrect     bool   `gorm:"not null" json:"isCorrect"`
	Position      int    `gorm:"default:0" json:"position"`
}

func (TestAnswer) TableName() string {
	return "test_answers"
}
