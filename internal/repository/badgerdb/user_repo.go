package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/iamasit07/dm-chat/internal/domain"
)

type userRecord struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRepo is the embedded credential store. Users live under "user:{username}".
type UserRepo struct {
	store *Store
}

func NewUserRepo(store *Store) *UserRepo {
	return &UserRepo{store: store}
}

func userKey(username string) []byte {
	return []byte("user:" + username)
}

// CreateUser stores the hash unless the username is taken.
// Two concurrent registrations of one name conflict in badger and the loser gets ErrDuplicateUser.
func (r *UserRepo) CreateUser(_ context.Context, username, passwordHash string) (*domain.User, error) {
	id, err := next(r.store.userID)
	if err != nil {
		return nil, translate(err)
	}
	rec := userRecord{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}

	err = r.store.db.Update(func(txn *badger.Txn) error {
		key := userKey(username)
		if _, err := txn.Get(key); err == nil {
			return domain.ErrDuplicateUser
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
	if errors.Is(err, badger.ErrConflict) {
		return nil, domain.ErrDuplicateUser
	}
	if err != nil {
		return nil, translate(err)
	}
	return toUser(rec), nil
}

func (r *UserRepo) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	var rec userRecord
	err := r.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, translate(err)
	}
	return toUser(rec), nil
}

func toUser(rec userRecord) *domain.User {
	return &domain.User{
		ID:           rec.ID,
		Username:     rec.Username,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}
}
