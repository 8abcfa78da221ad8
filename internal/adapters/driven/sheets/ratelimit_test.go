package sheets

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

func TestRateLimiter_RecordOnlyExtends(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiter(DefaultRateLimit)
	r.now = func() time.Time { return now }

	r.RecordRateLimitError(0)
	assert.True(t, r.RetryAt().IsZero(), "non-positive duration is ignored")

	r.RecordRateLimitError(10 * time.Second)
	assert.Equal(t, now.Add(10*time.Second), r.RetryAt())

	r.RecordRateLimitError(2 * time.Second)
	assert.Equal(t, now.Add(10*time.Second), r.RetryAt(), "shorter window does not shrink it")
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 10})
	require.NoError(t, r.Wait(context.Background()))

	r.RecordRateLimitError(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.Canceled)
}

func TestWrapError_StatusCodes(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusUnauthorized, domain.ErrAuthExpired},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusNotFound, domain.ErrInvalidSpreadsheetID},
		{http.StatusBadRequest, domain.ErrInvalidSpreadsheetID},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := WrapError(&googleapi.Error{Code: tt.code, Message: "x"})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	forbidden := WrapError(&googleapi.Error{Code: http.StatusForbidden, Message: "The caller does not have permission"})
	assert.Contains(t, forbidden.Error(), "access denied")

	server := &googleapi.Error{Code: http.StatusInternalServerError}
	assert.Same(t, error(server), WrapError(server))
}

func TestRetryAfter(t *testing.T) {
	withHeader := &googleapi.Error{Code: http.StatusTooManyRequests, Header: http.Header{"Retry-After": {"7"}}}
	assert.Equal(t, 7*time.Second, retryAfter(withHeader))

	assert.Zero(t, retryAfter(&googleapi.Error{Code: http.StatusTooManyRequests}))
	assert.Zero(t, retryAfter(errors.New("plain")))
	assert.True(t, IsRateLimited(withHeader))
	assert.False(t, IsRateLimited(errors.New("plain")))
}
