package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/coach-session-scheduler/internal/model"
)

// UserRepo provides read access to the `users` table. Users are seeded by
// migration and immutable in this service, so there is no write path.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, name, email, phone_number, role, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id. Returns sql.ErrNoRows when absent.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	return r.listWhere(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
}

// ListByRole returns all users with the given role ordered by id.
func (r *UserRepo) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	return r.listWhere(ctx, "SELECT "+userColumns+" FROM users WHERE role = ? ORDER BY id", role)
}

func (r *UserRepo) listWhere(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
