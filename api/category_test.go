package api

import (
	"encoding/json"
	"testing"

	"budget/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var categoryColumns = []string{"id", "user_id", "name", "type", "icon", "created_at", "updated_at"}

func categoryRouter(deps Deps) *gin.Engine {
	h := NewCategoryHandler(deps)
	r := newRouter(1)
	r.GET("/categories", h.List)
	r.POST("/categories", h.Create)
	r.PUT("/categories/:id", h.Update)
	r.DELETE("/categories/:id", h.Delete)
	return r
}

func TestCategoryHandler_List(t *testing.T) {
	deps, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `categories` WHERE user_id = \\? ORDER BY type, name").
		WillReturnRows(sqlmock.NewRows(categoryColumns).
			AddRow("food", 1, "Makanan", "expense", "fas fa-utensils", nil, nil).
			AddRow("salary", 1, "Gaji/Uang Saku", "income", "fas fa-money-bill-wave", nil, nil))

	w := doRequest(categoryRouter(deps), "GET", "/categories", "")
	require.Equal(t, 200, w.Code)

	var cats []models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cats))
	require.Len(t, cats, 2)
	assert.Equal(t, "food", cats[0].ID)
	assert.Equal(t, models.KindIncome, cats[1].Type)
}

func TestCategoryHandler_Create(t *testing.T) {
	deps, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `categories`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := doRequest(categoryRouter(deps), "POST", "/categories", `{"name":"Makan Siang!","type":"expense"}`)
	require.Equal(t, 201, w.Code)

	var cat models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cat))
	assert.Equal(t, "makan-siang", cat.ID)
	assert.Equal(t, models.DefaultCategoryIcon, cat.Icon)
}

func TestCategoryHandler_CreateBadType(t *testing.T) {
	deps, _ := setupMockDB(t)

	w := doRequest(categoryRouter(deps), "POST", "/categories", `{"name":"Rent","type":"bill"}`)

	assert.Equal(t, 400, w.Code)
}

func TestCategoryHandler_UpdateMissing(t *testing.T) {
	deps, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `categories` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	w := doRequest(categoryRouter(deps), "PUT", "/categories/nope", `{"name":"Rent","type":"expense"}`)

	assert.Equal(t, 404, w.Code)
	assert.Equal(t, "category not found", decodeError(t, w).Error)
}

func TestCategoryHandler_DeleteInUse(t *testing.T) {
	deps, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	w := doRequest(categoryRouter(deps), "DELETE", "/categories/food", "")

	assert.Equal(t, 409, w.Code)
	assert.Equal(t, "cannot delete category that is being used in transactions", decodeError(t, w).Error)
}

func TestCategoryHandler_Delete(t *testing.T) {
	deps, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `categories`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := doRequest(categoryRouter(deps), "DELETE", "/categories/gift", "")

	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"message":"category deleted"}`, w.Body.String())
}
