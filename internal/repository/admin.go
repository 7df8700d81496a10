package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
)

// IsAdmin checks if a user is listed in the admins table
func (r *Repository) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(*) FROM admins WHERE user_id = ?`), userID)
	return count > 0, err
}

// CreateAdmin creates a new admin
func (r *Repository) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	if admin.Role == "" {
		admin.Role = model.AdminRoleAdmin
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO admins (id, user_id, role, created_at, created_by)
		VALUES (?, ?, ?, ?, ?)`),
		admin.ID, admin.UserID, admin.Role, admin.CreatedAt, admin.CreatedBy)
	return err
}

// CreateAdminLog creates an admin action log entry
func (r *Repository) CreateAdminLog(ctx context.Context, log *model.AdminLog) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO admin_logs (id, admin_id, action, target_partner_id, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		log.ID, log.AdminID, log.Action, log.TargetPartnerID, log.Details, log.CreatedAt)
	return err
}

// LogAdminAction is a helper to create admin log with JSON details
func (r *Repository) LogAdminAction(ctx context.Context, adminID uuid.UUID, action string, targetPartnerID *uuid.UUID, details interface{}) error {
	var detailsJSON []byte
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return err
		}
	}
	return r.CreateAdminLog(ctx, &model.AdminLog{
		ID:              uuid.New(),
		AdminID:         adminID,
		Action:          action,
		TargetPartnerID: targetPartnerID,
		Details:         string(detailsJSON),
		CreatedAt:       time.Now().UTC(),
	})
}

// GetAdminLogs retrieves admin action logs
func (r *Repository) GetAdminLogs(ctx context.Context, limit, offset int) ([]model.AdminLog, error) {
	logs := []model.AdminLog{}
	err := r.db.SelectContext(ctx, &logs, r.db.Rebind(`
		SELECT * FROM admin_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`), limit, offset)
	return logs, err
}

// GetAdminLogsByTarget retrieves admin logs for a specific partner
func (r *Repository) GetAdminLogsByTarget(ctx context.Context, targetPartnerID uuid.UUID, limit, offset int) ([]model.AdminLog, error) {
	logs := []model.AdminLog{}
	err := r.db.SelectContext(ctx, &logs, r.db.Rebind(`
		SELECT * FROM admin_logs
		WHERE target_partner_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`), targetPartnerID, limit, offset)
	return logs, err
}
