package models

// AuditLog records one mutating operation. Changes holds a JSON object of
// the submitted fields with secrets redacted.
type AuditLog struct {
	Base
	UserID       string `gorm:"type:uuid;not null;index:idx_audit_logs_user_id" json:"user_id"`
	Action       string `gorm:"size:50;not null" json:"action"`
	ResourceType string `gorm:"size:50;not null" json:"resource_type"`
	ResourceID   string `gorm:"size:64" json:"resource_id"`
	IPAddress    string `gorm:"size:64" json:"ip_address"`
	Changes      string `gorm:"type:text" json:"changes,omitempty"`
}
