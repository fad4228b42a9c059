package users

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"` // student|lecturer|admin
	PasswordHash string `json:"-"`    // bcrypt
	CreatedAt    int64  `json:"created_at,omitempty"`
}

type Store interface {
	Put(ctx context.Context, u User) error
	Get(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}
