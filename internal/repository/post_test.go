package repository

import (
	"context"
	"regexp"
	"testing"

	"leanvote/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{Title: "Dark mode", Description: "Please add a dark theme", BoardOwnerID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, post)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID_WithDetails(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	// The single query carries count subqueries and the has_voted EXISTS check.
	mock.ExpectQuery(`SELECT posts\.\*, \(SELECT COUNT\(\*\) FROM votes WHERE votes\.post_id = posts\.id\) as votes_count.*EXISTS\(SELECT 1 FROM votes WHERE votes\.post_id = posts\.id AND votes\.user_id = \$1\) as has_voted`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "votes_count", "comments_count", "has_voted"}).
			AddRow(1, "Dark mode", 12, 3, true))

	post, err := repo.GetByID(ctx, 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, "Dark mode", post.Title)
	assert.Equal(t, 12, post.VotesCount)
	assert.Equal(t, 3, post.CommentsCount)
	assert.True(t, post.HasVoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID_Anonymous(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	// Anonymous reads select a constant false for has_voted.
	mock.ExpectQuery(`SELECT posts\.\*,.*false as has_voted`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "votes_count", "has_voted"}).
			AddRow(1, "Dark mode", 12, false))

	post, err := repo.GetByID(ctx, 1, 0)
	assert.NoError(t, err)
	assert.False(t, post.HasVoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Vote(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Inserts New Vote", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO votes (user_id, post_id, created_at)`)).
			WithArgs(2, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		inserted, err := repo.Vote(ctx, 2, 1)
		assert.NoError(t, err)
		assert.True(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Conflict Inserts Nothing", func(t *testing.T) {
		// The composite unique index absorbs the duplicate; zero rows affected.
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO votes (user_id, post_id, created_at)`)).
			WithArgs(2, 1).
			WillReturnResult(sqlmock.NewResult(0, 0))

		inserted, err := repo.Vote(ctx, 2, 1)
		assert.NoError(t, err)
		assert.False(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_Unvote(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Removes Existing Vote", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "votes" WHERE user_id = $1 AND post_id = $2`)).
			WithArgs(2, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		removed, err := repo.Unvote(ctx, 2, 1)
		assert.NoError(t, err)
		assert.True(t, removed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No Vote To Remove", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "votes" WHERE user_id = $1 AND post_id = $2`)).
			WithArgs(2, 1).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		removed, err := repo.Unvote(ctx, 2, 1)
		assert.NoError(t, err)
		assert.False(t, removed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_UpdateStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(ctx, 1, models.PostStatusPlanned)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListNewest_AppliesLimit(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT posts\.\*,.*FROM "posts" WHERE board_owner_id = \$1.*ORDER BY created_at DESC.*LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(3, "Newest").
			AddRow(2, "Older"))

	posts, err := repo.ListNewest(ctx, 1, 5)
	assert.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
