package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bistro-service/internal/models"
)

// FindAdmin retrieves an admin by username
func (s *Store) FindAdmin(ctx context.Context, username string) (*models.AdminCredential, error) {
	var cred models.AdminCredential
	err := s.db.GetContext(ctx, &cred,
		s.rebind("SELECT username, password_hash FROM admins WHERE username = ?"), username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// CreateAdmin stores a new admin credential
func (s *Store) CreateAdmin(ctx context.Context, cred models.AdminCredential) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind("INSERT INTO admins (username, password_hash) VALUES (?, ?)"),
		cred.Username, cred.PasswordHash)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", models.ErrAdminExists, cred.Username)
	}
	return err
}
