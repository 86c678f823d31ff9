package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vultlabs/vult/internal/auth/domain"
)

type usersRepo struct {
	db DBTX
}

const userColumns = `id, username, email, password_hash, status, status_changed_at,
	status_reason, failed_login_attempts, last_failed_login_at, last_login_at,
	created_at, updated_at`

func (r *usersRepo) scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u          domain.User
		status     string
		lastFailed sql.NullTime
		lastLogin  sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &status, &u.StatusChangedAt,
		&u.StatusReason, &u.FailedLoginAttempts, &lastFailed, &lastLogin,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.Status = domain.UserStatus(status)
	u.LastFailedLoginAt = mapNullTimePtr(lastFailed)
	u.LastLoginAt = mapNullTimePtr(lastLogin)
	return u, nil
}

func (r *usersRepo) loadRoleIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT role_id FROM user_roles WHERE user_id = ? ORDER BY role_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *usersRepo) getUserBy(ctx context.Context, where string, arg any) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg)

	u, err := r.scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.RoleIDs, err = r.loadRoleIDs(ctx, u.ID)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getUserBy(ctx, `id = ?`, id)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getUserBy(ctx, `username = ?`, username)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range users {
		users[i].RoleIDs, err = r.loadRoleIDs(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, status,
			status_changed_at, status_reason, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, string(u.Status),
		now, u.StatusReason, now, now,
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, roleID := range u.RoleIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`,
			u.ID, roleID,
		); err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

func (r *usersRepo) UpdateStatus(ctx context.Context, userID string, status domain.UserStatus, reason string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = ?, status_changed_at = ?, status_reason = ?, updated_at = ?
		 WHERE id = ?`,
		string(status), now, reason, now, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) RecordLoginSuccess(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET failed_login_attempts = 0, last_login_at = ?, updated_at = ?
		 WHERE id = ?`,
		now, now, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) RecordLoginFailure(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET failed_login_attempts = failed_login_attempts + 1,
		     last_failed_login_at = ?, updated_at = ?
		 WHERE id = ?`,
		now, now, userID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_roles (user_id, role_id) VALUES (?, ?)`,
		userID, roleID,
	)
	return err
}

func (r *usersRepo) RemoveRole(ctx context.Context, userID, roleID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = ? AND role_id = ?`,
		userID, roleID,
	)
	return err
}

// requireRow maps a zero-row UPDATE to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
