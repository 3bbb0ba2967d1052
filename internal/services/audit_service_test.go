package services

import (
	"encoding/json"
	"testing"

	"tesoro/internal/models"
	"tesoro/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, "UPDATE_TRANSACTION", "transaction", "tx-1", "10.0.0.1", map[string]any{"amount": "40.00"})
	svc.Log(user.ID, "DELETE_GOAL", "goal", "goal-1", "10.0.0.1", nil)

	var entries []models.AuditLog
	if err := db.Where("user_id = ?", user.ID).Order("created_at ASC").Find(&entries).Error; err != nil {
		t.Fatalf("failed to load audit log: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	var changes map[string]string
	if err := json.Unmarshal([]byte(entries[0].Changes), &changes); err != nil {
		t.Fatalf("expected JSON changes, got %q: %v", entries[0].Changes, err)
	}
	if changes["amount"] != "40.00" {
		t.Errorf("expected recorded amount, got %v", changes)
	}
	if entries[1].Changes != "" {
		t.Errorf("expected no changes for delete, got %q", entries[1].Changes)
	}
}

func TestAuditLogRedactsSecrets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, "UPDATE_PROFILE", "user", user.ID, "10.0.0.1", map[string]any{
		"Password":  "hunter2hunter2",
		"full_name": "New Name",
	})

	var entry models.AuditLog
	if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
		t.Fatalf("failed to load audit entry: %v", err)
	}

	var changes map[string]string
	if err := json.Unmarshal([]byte(entry.Changes), &changes); err != nil {
		t.Fatalf("expected JSON changes, got %q: %v", entry.Changes, err)
	}
	if changes["Password"] != "[redacted]" {
		t.Errorf("expected password redacted, got %q", changes["Password"])
	}
	if changes["full_name"] != "New Name" {
		t.Errorf("expected full_name kept, got %q", changes["full_name"])
	}
}

func TestAuditLogEmptyChanges(t *testing.T) {
	if got := encodeChanges("DELETE_GOAL", map[string]any{}); got != "" {
		t.Errorf("expected empty encoding, got %q", got)
	}
}
