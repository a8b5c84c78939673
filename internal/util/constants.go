package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 简历上传
const (
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"
	MaxResumeSize   = 10 << 20
)

var (
	AllowedResumeExtensions = []string{".pdf", ".doc", ".docx"}
)

// 通知类型
const (
	NotificationTestAssigned       = "test_assigned"
	NotificationTestCompleted      = "test_completed"
	NotificationInterviewScheduled = "interview_scheduled"
	NotificationInterviewReminder  = "interview_reminder"
	NotificationApplicationUpdate  = "application_update"
)
