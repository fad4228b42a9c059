package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Put(ctx context.Context, u User) error {
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id,name,email,role,password_hash,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, email=EXCLUDED.email,
			role=EXCLUDED.role, password_hash=EXCLUDED.password_hash`,
		u.ID, u.Name, u.Email, u.Role, u.PasswordHash, u.CreatedAt)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (User, error) {
	return s.one(ctx, `SELECT id,name,email,role,password_hash,created_at FROM users WHERE id=$1`, id)
}

func (s *SQLStore) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.one(ctx, `SELECT id,name,email,role,password_hash,created_at FROM users WHERE email=$1`, email)
}

func (s *SQLStore) one(ctx context.Context, query, arg string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
