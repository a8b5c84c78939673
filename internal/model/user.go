package model

import (
	"time"
)

type UserRole string

const (
	Candidate UserRole = "candidate"
	Employer  UserRole = "employer"
	Admin     UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case Candidate, Employer, Admin:
		return true
	default:
		return false
	}
}

// swagger:model User
type User struct {
	BaseModel
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"size:100;not null" json:"-"`
	Role         UserRole   `gorm:"size:20;not null;default:'candidate'" json:"role"`
	CompanyName  string     `gorm:"size:150" json:"companyName,omitempty"` // 仅雇主
	ExpertiseTag string     `gorm:"size:50;index" json:"expertiseTag,omitempty"`
	ResumeURL    string     `gorm:"size:255" json:"resumeUrl,omitempty"`
	ResumeObject string     `gorm:"size:255" json:"-"` // 存储后端中的对象名，替换简历时删除旧对象
	Disabled     bool       `gorm:"default:false" json:"disabled"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName 雇主优先展示公司名
func (u *User) DisplayName() string {
	if u.Role == Employer && u.CompanyName != "" {
		return u.CompanyName
	}
	return u.Name
}
