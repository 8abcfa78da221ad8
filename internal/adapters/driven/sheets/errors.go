package sheets

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

// WrapError converts a Sheets API error to a domain error.
// Errors that are not *googleapi.Error are returned unchanged.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", domain.ErrAuthExpired, gerr.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, gerr.Message)
	case http.StatusNotFound, http.StatusBadRequest:
		return fmt.Errorf("%w: %s", domain.ErrInvalidSpreadsheetID, gerr.Message)
	case http.StatusForbidden:
		return fmt.Errorf("spreadsheet access denied: %s", gerr.Message)
	default:
		return err
	}
}

// IsRateLimited returns true if the error is a 429 response.
func IsRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests
}

// retryAfter reads the Retry-After header of a 429 response in seconds.
// Returns zero if absent or not a number.
func retryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
