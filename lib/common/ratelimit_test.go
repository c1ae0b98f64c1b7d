package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRateLimitRule(t *testing.T) {
	rule, err := ParseRateLimitRule("100-M")
	require.NoError(t, err)
	require.Equal(t, int64(100), rule.Default.Limit)
	require.Equal(t, time.Minute, rule.Default.Period)
}

func TestParseRateLimitRuleByIPAddress(t *testing.T) {
	rule, err := ParseRateLimitRule("100-M 10.0.0.1=10-S 10.0.0.2=0-S")
	require.NoError(t, err)

	require.Equal(t, int64(100), rule.GetRate("1.2.3.4").Limit)
	require.Equal(t, int64(10), rule.GetRate("10.0.0.1").Limit)

	// a zero limit bypasses the limiter for that address
	require.True(t, rule.IsLimitedForIPAddress("10.0.0.1"))
	require.False(t, rule.IsLimitedForIPAddress("10.0.0.2"))
}

func TestParseRateLimitRuleInvalid(t *testing.T) {
	_, err := ParseRateLimitRule("not-a-rate")
	require.Error(t, err)
}
