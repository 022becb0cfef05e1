package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	auditLogs := `
CREATE TABLE IF NOT EXISTS audit_logs (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  action TEXT NOT NULL,
  description TEXT NOT NULL,
  target_type TEXT,
  target_id TEXT,
  previous_data TEXT,
  new_data TEXT,
  ip TEXT,
  user_agent TEXT,
  status TEXT NOT NULL DEFAULT 'success',
  error_message TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(auditLogs).Error)
	return db
}

func createAuditEntry(t *testing.T, db *gorm.DB, userID *uuid.UUID, action enums.AuditAction, created time.Time) *models.AuditLog {
	t.Helper()

	entry := &models.AuditLog{
		ID:          uuid.New(),
		UserID:      userID,
		Action:      action,
		Description: "test entry",
		Status:      enums.AuditStatusSuccess,
		CreatedAt:   created,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func TestRepositoryListFiltersByUserAndAction(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	otherID := uuid.New()
	now := time.Now().UTC()

	createAuditEntry(t, db, &userID, enums.AuditActionLogin, now.Add(-3*time.Minute))
	createAuditEntry(t, db, &userID, enums.AuditActionLogout, now.Add(-2*time.Minute))
	createAuditEntry(t, db, &otherID, enums.AuditActionLogin, now.Add(-time.Minute))

	action := enums.AuditActionLogin
	rows, total, err := repo.List(context.Background(), listAuditLogsParams{
		Offset: 0,
		Limit:  10,
		UserID: &userID,
		Action: &action,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.AuditActionLogin, rows[0].Action)
}

func TestRepositoryListWindowFilter(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	createAuditEntry(t, db, nil, enums.AuditActionLogin, now.Add(-48*time.Hour))
	createAuditEntry(t, db, nil, enums.AuditActionLogin, now.Add(-time.Hour))

	from := now.Add(-24 * time.Hour)
	rows, total, err := repo.List(context.Background(), listAuditLogsParams{
		Offset: 0,
		Limit:  10,
		From:   &from,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
}

func TestRepositoryDeleteOlderThan(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	createAuditEntry(t, db, nil, enums.AuditActionLogin, now.Add(-100*24*time.Hour))
	createAuditEntry(t, db, nil, enums.AuditActionLogin, now.Add(-time.Hour))

	deleted, err := repo.DeleteOlderThan(context.Background(), now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)
}
