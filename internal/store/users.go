package store

import (
	"context"
	"database/sql"
	"fmt"
)

// User is a stored enrollment linking an identity to a reference image.
// Image holds the reference image exactly as submitted (base64 text or
// data URL); encodings are recomputed from it on every match attempt.
type User struct {
	ID       int64
	Name     string
	Email    string
	Password string
	Image    string
}

// Users is the enrollment repository.
type Users struct {
	db *sql.DB
}

// NewUsers creates a repository over the given database handle.
func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

// Insert registers a new user and returns the assigned id.
// Ids are assigned by AUTOINCREMENT and never reused after deletion.
func (u *Users) Insert(ctx context.Context, name, email, password, image string) (int64, error) {
	res, err := u.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password, image) VALUES (?, ?, ?, ?)`,
		name, email, password, image,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

// ListAll returns every enrolled user in id order (insertion order).
func (u *Users) ListAll(ctx context.Context) ([]User, error) {
	rows, err := u.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(email, ''), COALESCE(password, ''), image FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var usr User
		if err := rows.Scan(&usr.ID, &usr.Name, &usr.Email, &usr.Password, &usr.Image); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, usr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// DeleteByID removes the user with the given id.
// Deleting an id that does not exist is not an error.
func (u *Users) DeleteByID(ctx context.Context, id int64) error {
	if _, err := u.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}

// Count returns the number of enrolled users.
func (u *Users) Count(ctx context.Context) (int, error) {
	var n int
	if err := u.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
