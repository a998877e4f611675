package postgres

import (
	"context"
	"time"

	"github.com/iamasit07/dm-chat/internal/domain"
)

// UserRepo is the Postgres credential store.
type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser inserts a user with an already hashed password.
// A taken username yields domain.ErrDuplicateUser.
func (r *UserRepo) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	query := `
	INSERT INTO users (username, password_hash)
	VALUES ($1, $2)
	RETURNING id, created_at;
	`
	user := &domain.User{Username: username, PasswordHash: passwordHash}
	var createdAt time.Time
	if err := r.db.QueryRowContext(ctx, query, username, passwordHash).Scan(&user.ID, &createdAt); err != nil {
		return nil, translate(err)
	}
	user.CreatedAt = createdAt.UTC()
	return user, nil
}

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
	SELECT id, username, password_hash, created_at
	FROM users
	WHERE username = $1;
	`
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
