package services

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	"tesoro/internal/logger"
	"tesoro/internal/models"
)

const redacted = "[redacted]"

// sensitiveKeys never reach the audit trail in clear text.
var sensitiveKeys = map[string]bool{
	"password":         true,
	"token":            true,
	"activation_token": true,
}

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Failures are logged and swallowed so auditing
// never fails the operation being audited.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      encodeChanges(action, changes),
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

func encodeChanges(action string, changes map[string]any) string {
	if len(changes) == 0 {
		return ""
	}

	clean := make(map[string]any, len(changes))
	for k, v := range changes {
		if sensitiveKeys[strings.ToLower(k)] {
			v = redacted
		}
		clean[k] = v
	}

	data, err := json.Marshal(clean)
	if err != nil {
		logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
		return "{}"
	}
	return string(data)
}
