package api

import (
	"budget/config"
)

// SafeErrorMessage keeps internal error text out of responses in release mode.
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}
