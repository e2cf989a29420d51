package repository

import (
	"context"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
)

const userColumns = "id, username, email, name, password_hash, role, is_active, created_at"

func (r *SQLRepository) FindUser(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := get(ctx, r.db, &user, domain.ErrUserNotFound,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *SQLRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := get(ctx, r.db, &user, domain.ErrUserNotFound,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *SQLRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0)
	if err := r.db.SelectContext(ctx, &users, "SELECT "+userColumns+" FROM users ORDER BY name"); err != nil {
		return nil, storageError("list users", err)
	}
	return users, nil
}

func (r *SQLRepository) CreateUser(ctx context.Context, user domain.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, username, email, name, password_hash, role, is_active, created_at)
		VALUES (:id, :username, :email, :name, :password_hash, :role, :is_active, :created_at)`, user)
	if err != nil {
		return storageError("create user", err)
	}
	return nil
}

func (r *SQLRepository) UpdateUser(ctx context.Context, user domain.User) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE users
		SET email = :email, name = :name, role = :role, is_active = :is_active, password_hash = :password_hash
		WHERE id = :id`, user)
	n, err := affected("update user", res, err)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
