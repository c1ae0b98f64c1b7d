package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestISO8601RoundTrip(t *testing.T) {
	now := time.Now().UTC()

	parsed, err := ParseISO8601(FormatISO8601(now))
	require.NoError(t, err)
	require.True(t, now.Equal(parsed))
}

func TestParseISO8601Invalid(t *testing.T) {
	_, err := ParseISO8601("2019-01-01 00:00:00")
	require.Error(t, err)
}
