package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/healthsync/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,name,age,password_hash,tokens,health_score,created_at"

// Create inserts u, filling its ID and CreatedAt.  Email is stored
// normalized.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = nowUTC(u.CreatedAt)
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, name, age, password_hash, tokens, health_score, created_at) VALUES (?,?,?,?,?,?,?,?)",
		u.ID, u.Email, u.Name, u.Age, u.PasswordHash, u.Tokens, u.HealthScore, u.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Email, &u.Name, &u.Age, &u.PasswordHash, &u.Tokens, &u.HealthScore, &u.CreatedAt)
	return u, err
}
