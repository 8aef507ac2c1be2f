package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/storage"
)

const userColumns = `id, username, email, password_hash, image, name, surname,
	location, about, working_on, interests, links, is_completed, is_private, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var createdAt int64
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Image,
		&u.Name, &u.Surname, &u.Location, &u.About, &u.WorkingOn,
		&u.Interests, &u.Links, &u.IsCompleted, &u.IsPrivate, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = fromMillis(createdAt)
	return &u, nil
}

// CreateUser persists a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, image, name, surname,
			location, about, working_on, interests, links, is_completed, is_private, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Image,
		user.Name, user.Surname, user.Location, user.About, user.WorkingOn,
		user.Interests, user.Links, user.IsCompleted, user.IsPrivate, toMillis(user.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where, arg,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "username = ?", username)
}

// UpdateUser persists changed user fields.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, password_hash = ?, image = ?,
			name = ?, surname = ?, location = ?, about = ?, working_on = ?,
			interests = ?, links = ?, is_completed = ?, is_private = ?
		 WHERE id = ?`,
		user.Username, user.Email, user.PasswordHash, user.Image,
		user.Name, user.Surname, user.Location, user.About, user.WorkingOn,
		user.Interests, user.Links, user.IsCompleted, user.IsPrivate, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteUser removes a user. Dependent rows are removed by the foreign key
// cascades declared in the schema.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListUsers returns completed profiles ordered by creation time descending.
func (s *SQLiteStore) ListUsers(ctx context.Context, search string, page storage.Page) ([]models.User, bool, error) {
	query := "SELECT " + userColumns + ` FROM users WHERE is_completed = 1`
	args := []any{}
	if search != "" {
		query += ` AND (instr(lower(username), lower(?)) > 0
			OR instr(lower(name || ' ' || surname), lower(?)) > 0)`
		args = append(args, search, search)
	}
	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, page.Limit()+1, page.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows, page.Limit())
}

// collectUsers drains a user result set queried with limit+1 rows and
// reports whether a next page exists.
func collectUsers(rows *sql.Rows, limit int) ([]models.User, bool, error) {
	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, false, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to iterate users: %w", err)
	}
	hasNext := len(users) > limit
	if hasNext {
		users = users[:limit]
	}
	return users, hasNext, nil
}
