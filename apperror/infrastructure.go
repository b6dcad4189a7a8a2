package apperror

import (
	"errors"
	"net"
	"strconv"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Infrastructure describes a store failure an operator has to fix.
type Infrastructure struct {
	Code       string `json:"code"`
	Message    string `json:"error"`
	Suggestion string `json:"suggestion"`
}

var (
	infraAuthFailed = Infrastructure{
		Message:    "Database authentication failed",
		Suggestion: "Check database credentials (username/password)",
	}
	infraMissingDB = Infrastructure{
		Message:    "Database does not exist",
		Suggestion: "Create the configured database, then run `budget migrate`",
	}
	infraRefused = Infrastructure{
		Code:       "ECONNREFUSED",
		Message:    "Database server is not running",
		Suggestion: "Start the database service",
	}
	infraNotFound = Infrastructure{
		Code:       "ENOTFOUND",
		Message:    "Database server not found",
		Suggestion: "Check database host configuration",
	}
	infraTooMany = Infrastructure{
		Message:    "Database refused new connections",
		Suggestion: "Lower database.max_open_conns or raise the server connection limit",
	}
)

// DetectInfrastructure inspects driver error codes and network errors.
func DetectInfrastructure(err error) (Infrastructure, bool) {
	if err == nil {
		return Infrastructure{}, false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "28P01", "28000":
			return withCode(infraAuthFailed, string(pqErr.Code)), true
		case "3D000":
			return withCode(infraMissingDB, string(pqErr.Code)), true
		case "53300", "57P03":
			return withCode(infraTooMany, string(pqErr.Code)), true
		}
		return Infrastructure{}, false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		code := strconv.Itoa(int(myErr.Number))
		switch myErr.Number {
		case 1045:
			return withCode(infraAuthFailed, code), true
		case 1049:
			return withCode(infraMissingDB, code), true
		case 1040:
			return withCode(infraTooMany, code), true
		}
		return Infrastructure{}, false
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return infraRefused, true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return infraNotFound, true
	}
	return Infrastructure{}, false
}

// IsDuplicateKey reports unique-constraint violations from either driver.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}

func withCode(info Infrastructure, code string) Infrastructure {
	info.Code = code
	return info
}
