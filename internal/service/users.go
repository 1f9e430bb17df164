package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/iliyamo/healthsync/internal/model"
	"github.com/iliyamo/healthsync/internal/repository"
	"github.com/iliyamo/healthsync/internal/utils"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or
// a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService struct {
	Users      UserStore
	BcryptCost int
}

func NewUserService(users UserStore, bcryptCost int) *UserService {
	return &UserService{Users: users, BcryptCost: bcryptCost}
}

type CreateUserInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Age      *int   `json:"age,omitempty"`
	Password string `json:"password"`
}

// Create registers a user with a zero balance and a zero health score.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return model.User{}, invalid("valid email required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.User{}, invalid("name required")
	}
	if in.Age != nil && (*in.Age < 0 || *in.Age > 150) {
		return model.User{}, invalid("age must be between 0 and 150")
	}
	if err := utils.CheckPassword(in.Password); err != nil {
		return model.User{}, invalid("%v", err)
	}
	hash, err := utils.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{Email: email, Name: name, Age: in.Age, PasswordHash: hash}
	if err := s.Users.Create(ctx, &u); err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (model.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Authenticate returns the user when email and password match.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}
