package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobErrorMessage(t *testing.T) {
	err := NewFetch("search", "unexpected status 500", stderrors.New("boom"))
	assert.Equal(t, "[fetch] search: unexpected status 500 - boom", err.Error())

	err = NewValidation("config", "page size out of range")
	assert.Equal(t, "[validation] config: page size out of range", err.Error())

	err = NewConfiguration("TELEGRAM_CHAT_ID is required", nil)
	assert.Equal(t, "[configuration] TELEGRAM_CHAT_ID is required", err.Error())
}

func TestJobErrorUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewNotify("telegram", "send failed", cause)
	assert.ErrorIs(t, err, cause)
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("cycle: %w", NewToken("chrome", "marker not found", nil))
	assert.True(t, IsType(wrapped, ErrorTypeToken))
	assert.False(t, IsType(wrapped, ErrorTypeFetch))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeToken))
}

func TestIsFetchFailure(t *testing.T) {
	assert.True(t, NewFetch("search", "x", nil).IsFetchFailure())
	assert.True(t, NewParsing("search", "x", nil).IsFetchFailure())
	assert.True(t, NewRateLimit("search", time.Minute).IsFetchFailure())
	assert.False(t, NewNotify("telegram", "x", nil).IsFetchFailure())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, NewToken("chrome", "x", nil).IsRetryable())
	assert.False(t, NewRateLimit("search", time.Minute).IsRetryable())
	assert.False(t, NewParsing("search", "x", nil).IsRetryable())
}
