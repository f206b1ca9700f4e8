package quota

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsQuotaMessageIndicators(t *testing.T) {
	cases := []string{
		"got HTTP 429 from upstream",
		"Quota exceeded for metric",
		"provider rate limit hit",
		"rpc error: code = ResourceExhausted",
		"You exceeded your current quota, please check your plan",
		"see https://example.com/docs/rate-limits",
		"Too Many Requests",
	}

	for _, message := range cases {
		require.True(t, IsQuotaMessage(message), "expected quota classification for %q", message)
	}
}

func TestIsQuotaMessageCaseInsensitive(t *testing.T) {
	require.True(t, IsQuotaMessage("RATE LIMIT reached"))
	require.True(t, IsQuotaMessage("ResourceExhausted: try later"))
	require.True(t, IsQuotaMessage("TOO MANY REQUESTS"))
}

func TestIsQuotaMessageUnrelated(t *testing.T) {
	require.False(t, IsQuotaMessage("invalid argument: field x required"))
	require.False(t, IsQuotaMessage("authentication failed: bad api key"))
	require.False(t, IsQuotaMessage(""))
}

func TestIsQuotaError(t *testing.T) {
	require.True(t, IsQuotaError(errors.New("429 too many requests")))
	require.True(t, IsQuotaError(fmt.Errorf("call failed: %w", errors.New("quota exceeded"))))
	require.False(t, IsQuotaError(errors.New("connection refused")))
	require.False(t, IsQuotaError(nil))
}

func TestClassifierIsPure(t *testing.T) {
	message := "You exceeded your current quota. retry_delay { seconds: 12 }"
	first := IsQuotaMessage(message)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, IsQuotaMessage(message))
	}
}
