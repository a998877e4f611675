package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/iamasit07/dm-chat/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

const (
	insertUserQuery    = `(?s)^\s*INSERT\s+INTO\s+users\s*\(username,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id,\s*created_at;\s*$`
	selectUserQuery    = `(?s)^\s*SELECT\s+id,\s*username,\s*password_hash,\s*created_at\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1;\s*$`
	insertMessageQuery = `(?s)^\s*INSERT\s+INTO\s+messages\s*\(message_id,\s*room,\s*sender,\s*body,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id;\s*$`
	selectRoomQuery    = `(?s)^\s*SELECT\s+id,\s*message_id,\s*sender,\s*body,\s*created_at\s+FROM\s+messages\s+WHERE\s+room\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+ASC,\s*id\s+ASC;\s*$`
)

func newMock(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mock, db
}

func TestUserRepo_CreateUser(t *testing.T) {
	req := require.New(t)
	mock, db := newMock(t)
	repo := NewUserRepo(db)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(insertUserQuery).
		WithArgs("alice", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	user, err := repo.CreateUser(context.Background(), "alice", "hash")
	req.NoError(err)
	req.Equal(int64(7), user.ID)
	req.Equal("alice", user.Username)
	req.Equal(created, user.CreatedAt)
	req.NoError(mock.ExpectationsWereMet())
}

func TestUserRepo_CreateUser_Duplicate(t *testing.T) {
	drivers := map[string]error{
		"pgx": &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"},
		"pq":  &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"},
	}

	for name, driverErr := range drivers {
		t.Run(name, func(t *testing.T) {
			mock, db := newMock(t)
			mock.ExpectQuery(insertUserQuery).
				WithArgs("alice", "hash").
				WillReturnError(driverErr)

			_, err := NewUserRepo(db).CreateUser(context.Background(), "alice", "hash")
			require.ErrorIs(t, err, domain.ErrDuplicateUser)
		})
	}
}

func TestUserRepo_GetUserByUsername(t *testing.T) {
	t.Run("should return the stored user", func(t *testing.T) {
		req := require.New(t)
		mock, db := newMock(t)
		mock.ExpectQuery(selectUserQuery).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
				AddRow(int64(1), "alice", "hash", time.Now()))

		user, err := NewUserRepo(db).GetUserByUsername(context.Background(), "alice")
		req.NoError(err)
		req.Equal("hash", user.PasswordHash)
	})

	t.Run("should map no rows to not found", func(t *testing.T) {
		mock, db := newMock(t)
		mock.ExpectQuery(selectUserQuery).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

		_, err := NewUserRepo(db).GetUserByUsername(context.Background(), "ghost")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("should wrap driver failures as store unavailable", func(t *testing.T) {
		mock, db := newMock(t)
		mock.ExpectQuery(selectUserQuery).WithArgs("alice").WillReturnError(errors.New("connection refused"))

		_, err := NewUserRepo(db).GetUserByUsername(context.Background(), "alice")
		require.ErrorIs(t, err, domain.ErrStoreUnavailable)
		require.Contains(t, err.Error(), "connection refused")
	})
}

func TestMessageRepo_AppendMessage(t *testing.T) {
	req := require.New(t)
	mock, db := newMock(t)
	room := domain.RoomKey{Low: "alice", High: "bob"}
	at := time.Date(2024, 1, 1, 0, 0, 0, 123456789, time.UTC)

	mock.ExpectQuery(insertMessageQuery).
		WithArgs("m-1", "alice#bob", "alice", "hi", at.Truncate(time.Microsecond)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	msg := &domain.ChatMessage{ID: "m-1", Room: room, Sender: "alice", Body: "hi", Timestamp: at}
	req.NoError(NewMessageRepo(db).AppendMessage(context.Background(), msg))
	req.Equal(int64(42), msg.Seq)
	req.Equal(at.Truncate(time.Microsecond), msg.Timestamp)
	req.NoError(mock.ExpectationsWereMet())
}

func TestMessageRepo_AppendMessage_Failure(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery(insertMessageQuery).WillReturnError(errors.New("disk full"))

	msg := &domain.ChatMessage{ID: "m-1", Room: domain.RoomKey{Low: "a1", High: "b1"}, Sender: "a1", Body: "hi", Timestamp: time.Now()}
	err := NewMessageRepo(db).AppendMessage(context.Background(), msg)
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestMessageRepo_RoomMessages(t *testing.T) {
	t.Run("should return rows in query order", func(t *testing.T) {
		req := require.New(t)
		mock, db := newMock(t)
		room := domain.RoomKey{Low: "alice", High: "bob"}
		at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(selectRoomQuery).
			WithArgs("alice#bob").
			WillReturnRows(sqlmock.NewRows([]string{"id", "message_id", "sender", "body", "created_at"}).
				AddRow(int64(1), "m-1", "alice", "hi", at).
				AddRow(int64(2), "m-2", "bob", "hey", at))

		msgs, err := NewMessageRepo(db).RoomMessages(context.Background(), room)
		req.NoError(err)
		req.Len(msgs, 2)
		req.Equal("m-1", msgs[0].ID)
		req.Equal(int64(2), msgs[1].Seq)
		req.Equal(room, msgs[1].Room)
	})

	t.Run("should return an empty slice for an empty room", func(t *testing.T) {
		req := require.New(t)
		mock, db := newMock(t)
		mock.ExpectQuery(selectRoomQuery).
			WithArgs("carol#dave").
			WillReturnRows(sqlmock.NewRows([]string{"id", "message_id", "sender", "body", "created_at"}))

		msgs, err := NewMessageRepo(db).RoomMessages(context.Background(), domain.RoomKey{Low: "carol", High: "dave"})
		req.NoError(err)
		req.NotNil(msgs)
		req.Empty(msgs)
	})
}

func TestRunMigrations_UsesEmbeddedDir(t *testing.T) {
	req := require.New(t)
	_, db := newMock(t)

	var gotDir string
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	defer func() { gooseUpContext = orig }()

	req.NoError(RunMigrations(context.Background(), db))
	req.Equal("migrations", gotDir)

	entries, err := migrationsFS.ReadDir("migrations")
	req.NoError(err)
	req.NotEmpty(entries)
}

func TestRunMigrations_Error(t *testing.T) {
	_, db := newMock(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	err := RunMigrations(context.Background(), db)
	require.ErrorContains(t, err, "migration error")
}

func TestWithSimpleProtocol(t *testing.T) {
	require.Equal(t,
		"postgres://u:p@localhost:5432/chat?default_query_exec_mode=simple_protocol&sslmode=disable",
		withSimpleProtocol("postgres://u:p@localhost:5432/chat?sslmode=disable"))
	require.Equal(t, "host=localhost dbname=chat", withSimpleProtocol("host=localhost dbname=chat"))
}
