package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Planora/planora/internal/domain"
)

func setupUserTest(t *testing.T) (*sqlmock.Sqlmock, domain.UserRepository, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	repo := NewUserRepository(db)
	return &mock, repo, func() { db.Close() }
}

func TestUserRepository_Create(t *testing.T) {
	t.Run("inserts user with timestamps", func(t *testing.T) {
		mock, repo, cleanup := setupUserTest(t)
		defer cleanup()

		user := &domain.User{
			ID:    "user_abc",
			Email: "ada@example.com",
			Name:  "Ada Lovelace",
		}

		(*mock).ExpectExec(`INSERT INTO users`).
			WithArgs(user.ID, user.Email, user.Name, user.ImageURL, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(context.Background(), user)
		require.NoError(t, err)
		assert.False(t, user.CreatedAt.IsZero())
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})

	t.Run("duplicate id conflicts", func(t *testing.T) {
		mock, repo, cleanup := setupUserTest(t)
		defer cleanup()

		(*mock).ExpectExec(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(context.Background(), &domain.User{ID: "user_abc", Email: "ada@example.com"})
		assert.True(t, domain.IsConflict(err))
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})
}

func TestUserRepository_Update(t *testing.T) {
	t.Run("updates existing user", func(t *testing.T) {
		mock, repo, cleanup := setupUserTest(t)
		defer cleanup()

		user := &domain.User{ID: "user_abc", Email: "ada@example.com", Name: "Ada"}

		(*mock).ExpectExec(`UPDATE users`).
			WithArgs(user.ID, user.Email, user.Name, user.ImageURL, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), user))
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		mock, repo, cleanup := setupUserTest(t)
		defer cleanup()

		(*mock).ExpectExec(`UPDATE users`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), &domain.User{ID: "user_gone"})
		assert.True(t, domain.IsNotFound(err))
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})
}

func TestUserRepository_Delete(t *testing.T) {
	t.Run("deletes existing user", func(t *testing.T) {
		mock, repo, cleanup := setupUserTest(t)
		defer cleanup()

		(*mock).ExpectExec(`DELETE FROM users`).
			WithArgs("user_abc").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), "user_abc"))
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		mock, repo, cleanup := setupUserTest(t)
		defer cleanup()

		(*mock).ExpectExec(`DELETE FROM users`).
			WithArgs("user_gone").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), "user_gone")
		assert.True(t, domain.IsNotFound(err))
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	t.Run("returns user", func(t *testing.T) {
		mock, repo, cleanup := setupUserTest(t)
		defer cleanup()

		now := time.Now().UTC()
		rows := sqlmock.NewRows([]string{"id", "email", "name", "image_url", "created_at", "updated_at"}).
			AddRow("user_abc", "ada@example.com", "Ada Lovelace", "", now, now)

		(*mock).ExpectQuery(`SELECT id, email, name, image_url, created_at, updated_at`).
			WithArgs("ada@example.com").
			WillReturnRows(rows)

		user, err := repo.GetByEmail(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "user_abc", user.ID)
		assert.Equal(t, "Ada Lovelace", user.Name)
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		mock, repo, cleanup := setupUserTest(t)
		defer cleanup()

		(*mock).ExpectQuery(`SELECT id, email, name, image_url, created_at, updated_at`).
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "image_url", "created_at", "updated_at"}))

		_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
		assert.True(t, domain.IsNotFound(err))
		assert.NoError(t, (*mock).ExpectationsWereMet())
	})
}
