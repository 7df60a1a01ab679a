package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vaultsuite/onboard/internal/onboard/domain"
)

type tenantsRepo struct {
	db *sql.DB
}

const tenantColumns = `tenant_id, admin_email, state, invitation_date_utc, invited_by,
	external_invite_id, external_user_id, status_note, retry_count, last_error,
	revision, updated_at`

func (r *tenantsRepo) GetTenant(ctx context.Context, tenantID string) (domain.TenantInvitationRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenant_invitations WHERE tenant_id = ?`,
		tenantID,
	)

	rec, err := scanTenant(row)
	if err != nil {
		return domain.TenantInvitationRecord{}, mapNotFound(err)
	}
	return rec, nil
}

func (r *tenantsRepo) UpsertTenant(ctx context.Context, rec domain.TenantInvitationRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenant_invitations (
			tenant_id, admin_email, state, invitation_date_utc, invited_by,
			external_invite_id, external_user_id, status_note, retry_count,
			last_error, revision, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT (tenant_id) DO UPDATE SET
			admin_email         = excluded.admin_email,
			state               = excluded.state,
			invitation_date_utc = excluded.invitation_date_utc,
			invited_by          = excluded.invited_by,
			external_invite_id  = excluded.external_invite_id,
			external_user_id    = excluded.external_user_id,
			status_note         = excluded.status_note,
			retry_count         = excluded.retry_count,
			last_error          = excluded.last_error,
			revision            = tenant_invitations.revision + 1,
			updated_at          = excluded.updated_at`,
		rec.TenantID,
		rec.AdminEmail,
		rec.State.String(),
		mapOptionalTime(rec.InvitationDateUTC),
		rec.InvitedBy,
		rec.ExternalInviteID,
		rec.ExternalUserID,
		rec.StatusNote,
		rec.RetryCount,
		rec.LastError,
		time.Now().UTC(),
	)
	return err
}

func (r *tenantsRepo) ListRetryCandidates(ctx context.Context, maxAttempts int, before time.Time) ([]domain.TenantInvitationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+tenantColumns+`
		FROM tenant_invitations
		WHERE state = ?
		  AND retry_count < ?
		  AND invitation_date_utc IS NOT NULL
		  AND invitation_date_utc <= ?
		ORDER BY invitation_date_utc ASC`,
		domain.StateFailed.String(),
		maxAttempts,
		before,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TenantInvitationRecord
	for rows.Next() {
		rec, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (domain.TenantInvitationRecord, error) {
	var (
		rec            domain.TenantInvitationRecord
		state          string
		invitationDate sql.NullTime
	)

	err := row.Scan(
		&rec.TenantID,
		&rec.AdminEmail,
		&state,
		&invitationDate,
		&rec.InvitedBy,
		&rec.ExternalInviteID,
		&rec.ExternalUserID,
		&rec.StatusNote,
		&rec.RetryCount,
		&rec.LastError,
		&rec.Revision,
		&rec.UpdatedAt,
	)
	if err != nil {
		return domain.TenantInvitationRecord{}, err
	}

	rec.State = domain.InvitationState(state)
	if invitationDate.Valid {
		rec.InvitationDateUTC = invitationDate.Time.UTC()
	}
	return rec, nil
}

func mapOptionalTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
