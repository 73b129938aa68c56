package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, NewNopLogger())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ReturnsLastError(t *testing.T) {
	sentinel := errors.New("db down")
	calls := 0
	err := RetryWithBackoff(2, time.Millisecond, func() error {
		calls++
		return sentinel
	}, NewNopLogger())

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 2, calls)
}

func TestRetryWithBackoff_ZeroRetriesRunsOnce(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(0, time.Millisecond, func() error {
		calls++
		return nil
	}, NewNopLogger())

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
