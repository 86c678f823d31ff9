package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vultlabs/vult/internal/auth/domain"
)

type invitationsRepo struct {
	db DBTX
}

const invitationColumns = `id, email, value, type, invited_by, role_ids,
	expires_at, accepted_at, accepted_by, cancelled, created_at, updated_at`

func (r *invitationsRepo) scanInvitation(row interface{ Scan(...any) error }) (domain.InvitationToken, error) {
	var (
		inv        domain.InvitationToken
		typ        string
		roleIDs    string
		expiresAt  sql.NullTime
		acceptedAt sql.NullTime
		acceptedBy sql.NullString
	)
	err := row.Scan(
		&inv.ID, &inv.Email, &inv.Value, &typ, &inv.InvitedBy, &roleIDs,
		&expiresAt, &acceptedAt, &acceptedBy, &inv.Cancelled,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return domain.InvitationToken{}, err
	}

	inv.Type = domain.InvitationType(typ)
	inv.RoleIDs = splitIDs(roleIDs)
	inv.ExpiresAt = mapNullTimePtr(expiresAt)
	inv.AcceptedAt = mapNullTimePtr(acceptedAt)
	inv.AcceptedBy = mapNullString(acceptedBy)
	return inv, nil
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.InvitationToken) error {
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitation_tokens (id, email, value, type, invited_by,
			role_ids, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Email, inv.Value, string(inv.Type), inv.InvitedBy,
		joinIDs(inv.RoleIDs), mapOptionalTime(inv.ExpiresAt), now, now,
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByValue(ctx context.Context, value string) (domain.InvitationToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitation_tokens WHERE value = ?`, value)

	inv, err := r.scanInvitation(row)
	if err != nil {
		return domain.InvitationToken{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) ListInvitations(ctx context.Context) ([]domain.InvitationToken, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM invitation_tokens ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []domain.InvitationToken
	for rows.Next() {
		inv, err := r.scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (r *invitationsRepo) MarkInvitationAccepted(ctx context.Context, invitationID, acceptedBy string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitation_tokens
		 SET accepted_at = ?, accepted_by = ?, updated_at = ?
		 WHERE id = ? AND accepted_at IS NULL AND cancelled = 0`,
		now, acceptedBy, now, invitationID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *invitationsRepo) CancelInvitation(ctx context.Context, invitationID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitation_tokens SET cancelled = 1, updated_at = ?
		 WHERE id = ? AND accepted_at IS NULL`,
		time.Now().UTC(), invitationID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM invitation_tokens
		 WHERE accepted_at IS NULL AND expires_at IS NOT NULL AND expires_at < ?`,
		time.Now().UTC(),
	)
	return err
}
