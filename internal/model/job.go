package model

// swagger:model Job
type Job struct {
	BaseModel
	EmployerID   uint   `gorm:"index;not null" json:"employerId"`
	Employer     User   `gorm:"foreignKey:EmployerID" json:"-"`
	Title        string `gorm:"size:200;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	Location     string `gorm:"size:100" json:"location"`
	ExpertiseTag string `gorm:"size:50;index" json:"expertiseTag"`
	IsOpen       bool   `gorm:"not null" json:"isOpen"`
}

func (Job) TableName() string {
	return "jobs"
}
