package apperror

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"typed not found", NotFound("transaction not found"), KindNotFound},
		{"wrapped typed", fmt.Errorf("delete: %w", Conflict("in use")), KindConflict},
		{"record not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), KindNotFound},
		{"gorm duplicate", gorm.ErrDuplicatedKey, KindConflict},
		{"pq duplicate", &pq.Error{Code: "23505"}, KindConflict},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, KindConflict},
		{"pq auth", &pq.Error{Code: "28P01"}, KindInfrastructure},
		{"pq missing db", &pq.Error{Code: "3D000"}, KindInfrastructure},
		{"mysql access denied", &mysql.MySQLError{Number: 1045}, KindInfrastructure},
		{"refused", &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, KindInfrastructure},
		{"dns", &net.OpError{Op: "dial", Err: &net.DNSError{Err: "no such host", Name: "db"}}, KindInfrastructure},
		{"plain", errors.New("boom"), KindUnclassified},
		{"nil", nil, KindUnclassified},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, KindUnauthorized.Status())
	assert.Equal(t, http.StatusBadRequest, KindInvalid.Status())
	assert.Equal(t, http.StatusNotFound, KindNotFound.Status())
	assert.Equal(t, http.StatusConflict, KindConflict.Status())
	assert.Equal(t, http.StatusServiceUnavailable, KindInfrastructure.Status())
	assert.Equal(t, http.StatusInternalServerError, KindUnclassified.Status())
}

func TestDetectInfrastructure(t *testing.T) {
	info, ok := DetectInfrastructure(fmt.Errorf("ping: %w", &pq.Error{Code: "3D000"}))
	assert.True(t, ok)
	assert.Equal(t, "3D000", info.Code)
	assert.Equal(t, "Database does not exist", info.Message)
	assert.NotEmpty(t, info.Suggestion)

	info, ok = DetectInfrastructure(&mysql.MySQLError{Number: 1049})
	assert.True(t, ok)
	assert.Equal(t, "1049", info.Code)

	info, ok = DetectInfrastructure(&net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)})
	assert.True(t, ok)
	assert.Equal(t, "ECONNREFUSED", info.Code)

	_, ok = DetectInfrastructure(&pq.Error{Code: "23505"})
	assert.False(t, ok)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "category not found", Message(fmt.Errorf("x: %w", NotFound("category not found")), "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("raw"), "fallback"))
}
