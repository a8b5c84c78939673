package model

type ApplicationStatus string

const (
	ApplicationApplied   ApplicationStatus = "applied"
	ApplicationReviewing ApplicationStatus = "reviewing"
	ApplicationTestSent  ApplicationStatus = "test_sent"
	ApplicationInterview ApplicationStatus = "interview"
	ApplicationOffered   ApplicationStatus = "offered"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationApplied, ApplicationReviewing, ApplicationTestSent, ApplicationInterview,
		ApplicationOffered, ApplicationRejected, ApplicationWithdrawn:
		return true
	default:
		return false
	}
}

// swagger:model Application
type Application struct {
	BaseModel
	JobID       uint              `gorm:"uniqueIndex:idx_applications_job_candidate;not null" json:"jobId"`
	Job         Job               `gorm:"foreignKey:JobID" json:"job,omitempty"`
	CandidateID uint              `gorm:"uniqueIndex:idx_applications_job_candidate;not null" json:"candidateId"`
	EmployerID  uint              `gorm:"index;not null" json:"employerId"` // 冗余，便于按雇主-候选人查找
	Status      ApplicationStatus `gorm:"size:20;not null;default:'applied'" json:"status"`
	CoverLetter string            `gorm:"type:text" json:"coverLetter,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}
