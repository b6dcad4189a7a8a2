package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"budget/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_LoginKeepsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ana", body["username"])
			_, _ = io.WriteString(w, `{"token":"tok-123","user":{"id":5,"username":"ana"}}`)
		case "/categories":
			gotAuth = r.Header.Get("Authorization")
			_, _ = io.WriteString(w, `[]`)
		}
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	user, err := c.Login(context.Background(), "ana", "password123")
	require.NoError(t, err)
	assert.Equal(t, uint(5), user.ID)

	cats, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cats)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_Transactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/transactions", r.URL.Path)
		assert.Equal(t, "2024-03", r.URL.Query().Get("month"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[{"id":2,"amount":20000,"type":"expense","category":"food","date":"2024-03-15"}]`)
	}))
	defer srv.Close()

	txs, err := New(srv.URL, WithToken("secret")).Transactions(context.Background(), "2024-03")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.KindExpense, txs[0].Type)
	assert.Equal(t, "2024-03-15", txs[0].Date.String())
	assert.True(t, decimal.NewFromInt(20000).Equal(txs[0].Amount))
}

func TestClient_AddTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2024-03-01", body["date"])
		assert.Equal(t, float64(50000), body["amount"])
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":9}`)
	}))
	defer srv.Close()

	id, err := New(srv.URL).AddTransaction(context.Background(), TransactionInput{
		Amount:   decimal.NewFromInt(50000),
		Type:     models.KindIncome,
		Category: "salary",
		Date:     models.NewDate(2024, time.March, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, uint(9), id)
}

func TestClient_BalanceNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/balance/2024-03", r.URL.Path)
		_, _ = io.WriteString(w, `null`)
	}))
	defer srv.Close()

	b, err := New(srv.URL).Balance(context.Background(), "2024-03")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/categories/food":
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, `{"error":"cannot delete category that is being used in transactions"}`)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error":"Database server is not running","code":"ECONNREFUSED","suggestion":"Start the database service"}`)
		}
	}))
	defer srv.Close()
	c := New(srv.URL)

	err := c.DeleteCategory(context.Background(), "food")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, StatusOf(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "cannot delete category that is being used in transactions", apiErr.Message)

	_, err = c.Transactions(context.Background(), "")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ECONNREFUSED", apiErr.Code)
	assert.Contains(t, err.Error(), "Start the database service")
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL).DeleteTransaction(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
	assert.Equal(t, 0, StatusOf(context.Canceled))
}

func TestClient_RecalculateWritesDerivedFields(t *testing.T) {
	var patch models.BalancePatch
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "GET" && r.URL.Path == "/balance/2024-03":
			_, _ = io.WriteString(w, `{"id":1,"month":"2024-03","initialBalance":100000,"currentBalance":100000,"totalIncome":0,"totalExpense":0}`)
		case r.Method == "GET" && r.URL.Path == "/transactions":
			assert.Equal(t, "2024-03", r.URL.Query().Get("month"))
			_, _ = io.WriteString(w, `[
				{"id":1,"amount":50000,"type":"income","category":"salary","date":"2024-03-01"},
				{"id":2,"amount":20000,"type":"expense","category":"food","date":"2024-03-15"}
			]`)
		case r.Method == "PUT" && r.URL.Path == "/balance/2024-03":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
			_, _ = io.WriteString(w, `{"success":true}`)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	b, err := New(srv.URL).Recalculate(context.Background(), "2024-03")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, decimal.NewFromInt(130000).Equal(b.CurrentBalance))

	require.NotNil(t, patch.CurrentBalance)
	assert.True(t, decimal.NewFromInt(130000).Equal(*patch.CurrentBalance))
	assert.True(t, decimal.NewFromInt(50000).Equal(*patch.TotalIncome))
	assert.True(t, decimal.NewFromInt(20000).Equal(*patch.TotalExpense))
	assert.Nil(t, patch.InitialBalance)
}
