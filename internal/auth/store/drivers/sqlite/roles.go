package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/vultlabs/vult/internal/auth/domain"
)

type rolesRepo struct {
	db DBTX
}

func (r *rolesRepo) loadPrivileges(ctx context.Context, roleID string) ([]domain.Privilege, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, role_id, aggregate, access_right
		 FROM privileges WHERE role_id = ? ORDER BY aggregate, access_right`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var privs []domain.Privilege
	for rows.Next() {
		var (
			p     domain.Privilege
			right int
		)
		if err := rows.Scan(&p.ID, &p.RoleID, &p.Aggregate, &right); err != nil {
			return nil, err
		}
		p.AccessRight = domain.AccessRight(right)
		privs = append(privs, p)
	}
	return privs, rows.Err()
}

func (r *rolesRepo) getRoleBy(ctx context.Context, where string, arg any) (domain.Role, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM roles WHERE `+where, arg)

	var role domain.Role
	if err := row.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return domain.Role{}, mapNotFound(err)
	}

	privs, err := r.loadPrivileges(ctx, role.ID)
	if err != nil {
		return domain.Role{}, err
	}
	role.Privileges = privs
	return role, nil
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id string) (domain.Role, error) {
	return r.getRoleBy(ctx, `id = ?`, id)
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	return r.getRoleBy(ctx, `name = ?`, name)
}

func (r *rolesRepo) GetRolesByNames(ctx context.Context, names []string) ([]domain.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}

	return r.listRoles(ctx,
		`SELECT id, name, created_at, updated_at FROM roles
		 WHERE name IN (`+placeholders+`) ORDER BY name`, args...)
}

func (r *rolesRepo) ListForUser(ctx context.Context, userID string) ([]domain.Role, error) {
	return r.listRoles(ctx,
		`SELECT r.id, r.name, r.created_at, r.updated_at
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ? ORDER BY r.name`, userID)
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	return r.listRoles(ctx,
		`SELECT id, name, created_at, updated_at FROM roles ORDER BY name`)
}

func (r *rolesRepo) listRoles(ctx context.Context, query string, args ...any) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roles {
		roles[i].Privileges, err = r.loadPrivileges(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return roles, nil
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roles (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		role.ID, role.Name, now, now,
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, p := range role.Privileges {
		if err := r.AddPrivilege(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *rolesRepo) RenameRole(ctx context.Context, roleID, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE roles SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), roleID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *rolesRepo) AddPrivilege(ctx context.Context, p domain.Privilege) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO privileges (id, role_id, aggregate, access_right) VALUES (?, ?, ?, ?)`,
		p.ID, p.RoleID, p.Aggregate, int(p.AccessRight),
	)
	return mapConstraint(err)
}

func (r *rolesRepo) DeletePrivilege(ctx context.Context, privilegeID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM privileges WHERE id = ?`, privilegeID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *rolesRepo) DeleteRole(ctx context.Context, roleID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM roles WHERE id = ?`, roleID)
	if err != nil {
		return err
	}
	return requireRow(res)
}
