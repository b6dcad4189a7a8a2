package repository

import (
	"errors"
	"testing"
	"time"

	"budget/apperror"
	"budget/models"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	now := fixedClock(time.UnixMilli(1700000000123))

	assert.Equal(t, "makan-siang", Slugify("Makan Siang!", now))
	assert.Equal(t, "side-hustle", Slugify("  Side   Hustle ", now))
	assert.Equal(t, "k_1-2", Slugify("K_1 2", now))
	assert.Equal(t, "cat-1700000000123", Slugify("!!!", now))
	assert.Equal(t, "cat-1700000000123", Slugify("   ", now))
}

func TestCategoryRepository_AddDefaultsIcon(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `categories`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cat, err := repo.Add(ctx, 1, CategoryInput{Name: "Makan Siang!", Type: models.KindExpense})
	require.NoError(t, err)
	assert.Equal(t, "makan-siang", cat.ID)
	assert.Equal(t, "Makan Siang!", cat.Name)
	assert.Equal(t, models.DefaultCategoryIcon, cat.Icon)
}

func TestCategoryRepository_AddDuplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `categories`").
		WillReturnError(&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, err := repo.Add(ctx, 1, CategoryInput{Name: "Food", Type: models.KindExpense, Icon: "fas fa-utensils"})
	requireKind(t, err, apperror.KindConflict)
}

func TestCategoryRepository_AddInvalid(t *testing.T) {
	db, _ := setupMockDB(t)
	repo := NewCategoryRepository(db)

	_, err := repo.Add(ctx, 1, CategoryInput{Name: "", Type: models.KindExpense})
	requireKind(t, err, apperror.KindInvalid)
	_, err = repo.Add(ctx, 1, CategoryInput{Name: "Food", Type: "other"})
	requireKind(t, err, apperror.KindInvalid)
}

func TestCategoryRepository_Update(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `categories` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cat, err := repo.Update(ctx, 1, "food", CategoryInput{Name: "Meals", Type: models.KindExpense, Icon: "fas fa-pizza-slice"})
	require.NoError(t, err)
	assert.Equal(t, "food", cat.ID)
	assert.Equal(t, "Meals", cat.Name)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `categories` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	_, err = repo.Update(ctx, 1, "ghost", CategoryInput{Name: "Ghost", Type: models.KindExpense})
	requireKind(t, err, apperror.KindNotFound)
}

func TestCategoryRepository_DeleteInUse(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions` WHERE user_id = \\? AND category = \\?").
		WithArgs(1, "food").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	err := repo.Delete(ctx, 1, "food")
	requireKind(t, err, apperror.KindConflict)
	assert.Equal(t, "cannot delete category that is being used in transactions", apperror.Message(err, ""))
}

func TestCategoryRepository_DeleteUnused(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("^DELETE FROM `categories` WHERE user_id = \\? AND id = \\?$").
		WithArgs(1, "gift").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(ctx, 1, "gift"))
}

func TestCategoryRepository_DeleteMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `categories`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	requireKind(t, repo.Delete(ctx, 1, "nope"), apperror.KindNotFound)
}

func TestCategoryRepository_DeleteCountFails(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions`").
		WillReturnError(errors.New("connection reset"))

	err := repo.Delete(ctx, 1, "food")
	require.Error(t, err)
	assert.Equal(t, apperror.KindUnclassified, apperror.Classify(err))
}

func TestCategoryRepository_SeedDefaults(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `categories`").
		WillReturnResult(sqlmock.NewResult(0, int64(len(models.DefaultCategories()))))
	mock.ExpectCommit()

	require.NoError(t, repo.SeedDefaults(ctx, 42))
}
