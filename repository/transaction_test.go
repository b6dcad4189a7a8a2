package repository

import (
	"testing"
	"time"

	"budget/apperror"
	"budget/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transactionColumns = []string{"id", "user_id", "category", "amount", "type", "description", "date", "created_at"}

func TestTransactionRepository_Add(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	id, err := repo.Add(ctx, 1, NewTransaction{
		Type:        models.KindExpense,
		Amount:      decimal.NewFromInt(20000),
		Description: "lunch",
		Category:    " food ",
		Date:        models.NewDate(2024, time.March, 15),
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
}

func TestTransactionRepository_AddRejectsBadInput(t *testing.T) {
	db, _ := setupMockDB(t)
	repo := NewTransactionRepository(db)
	valid := NewTransaction{
		Type:     models.KindIncome,
		Amount:   decimal.NewFromInt(1),
		Category: "salary",
		Date:     models.NewDate(2024, time.March, 1),
	}

	_, err := repo.Add(ctx, 0, valid)
	requireKind(t, err, apperror.KindUnauthorized)

	bad := valid
	bad.Type = "transfer"
	_, err = repo.Add(ctx, 1, bad)
	requireKind(t, err, apperror.KindInvalid)

	bad = valid
	bad.Amount = decimal.NewFromInt(-5)
	_, err = repo.Add(ctx, 1, bad)
	requireKind(t, err, apperror.KindInvalid)

	bad = valid
	bad.Category = "  "
	_, err = repo.Add(ctx, 1, bad)
	requireKind(t, err, apperror.KindInvalid)

	bad = valid
	bad.Date = models.Date{}
	_, err = repo.Add(ctx, 1, bad)
	requireKind(t, err, apperror.KindInvalid)
}

func TestTransactionRepository_ListByMonth(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(db)
	month := mustMonth(t, "2024-03")

	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE user_id = \\? AND \\(date >= \\? AND date < \\?\\) ORDER BY date DESC, id DESC").
		WithArgs(1, month.Start(), month.End()).
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow(2, 1, "food", "20000.00", "expense", "lunch", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), time.Now()).
			AddRow(1, 1, "salary", "50000.00", "income", "", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Now()))

	txs, err := repo.List(ctx, 1, month)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, uint(2), txs[0].ID)
	assert.Equal(t, models.KindExpense, txs[0].Type)
	assert.True(t, decimal.NewFromInt(20000).Equal(txs[0].Amount))
	assert.Equal(t, "2024-03-15", txs[0].Date.String())
}

func TestTransactionRepository_ListAll(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE user_id = \\? ORDER BY date DESC, id DESC").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(transactionColumns))

	txs, err := repo.List(ctx, 3, "")
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestTransactionRepository_Update(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `transactions` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	patch := models.TransactionPatch{}.WithAmount(decimal.NewFromInt(75000)).WithDescription("bonus")
	require.NoError(t, repo.Update(ctx, 1, 9, patch))
}

func TestTransactionRepository_UpdateMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `transactions` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Update(ctx, 1, 404, models.TransactionPatch{}.WithCategory("food"))
	requireKind(t, err, apperror.KindNotFound)
}

func TestTransactionRepository_UpdateEmptyPatchChecksExistence(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE id = \\? AND user_id = \\?").
		WillReturnRows(sqlmock.NewRows(transactionColumns))

	err := repo.Update(ctx, 1, 5, models.TransactionPatch{})
	requireKind(t, err, apperror.KindNotFound)
}

func TestTransactionRepository_UpdateInvalidPatch(t *testing.T) {
	db, _ := setupMockDB(t)
	repo := NewTransactionRepository(db)

	err := repo.Update(ctx, 1, 5, models.TransactionPatch{}.WithType("loan"))
	requireKind(t, err, apperror.KindInvalid)
}

func TestTransactionRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `transactions` WHERE id = \\? AND user_id = \\?").
		WithArgs(4, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.Delete(ctx, 1, 4))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `transactions`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	requireKind(t, repo.Delete(ctx, 2, 4), apperror.KindNotFound)
}

func TestTransactionRepository_SumByKind(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery("SELECT type, COALESCE\\(SUM\\(amount\\), 0\\) AS total FROM `transactions` WHERE .* GROUP BY").
		WillReturnRows(sqlmock.NewRows([]string{"type", "total"}).AddRow("income", "150000"))

	sums, err := repo.SumByKind(ctx, 1, mustMonth(t, "2024-03"))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150000).Equal(sums[models.KindIncome]))
	assert.True(t, decimal.Zero.Equal(sums[models.KindExpense]))
}
