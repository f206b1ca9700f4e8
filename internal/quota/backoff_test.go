package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExtractRetryDelayStructured(t *testing.T) {
	seconds, ok := ExtractRetryDelay("rpc error: ResourceExhausted ... retry_delay { seconds: 42 } ...")
	require.True(t, ok)
	require.Equal(t, 42, seconds)
}

func TestExtractRetryDelayBareSeconds(t *testing.T) {
	seconds, ok := ExtractRetryDelay("server said seconds: 25 before retry")
	require.True(t, ok)
	require.Equal(t, 25, seconds)
}

func TestExtractRetryDelayLooseForms(t *testing.T) {
	seconds, ok := ExtractRetryDelay("please retry in 31 seconds")
	require.True(t, ok)
	require.Equal(t, 31, seconds)

	seconds, ok = ExtractRetryDelay("please wait 17 seconds")
	require.True(t, ok)
	require.Equal(t, 17, seconds)
}

func TestExtractRetryDelayNotFound(t *testing.T) {
	_, ok := ExtractRetryDelay("quota exceeded, no hint here")
	require.False(t, ok)

	_, ok = ExtractRetryDelay("")
	require.False(t, ok)
}

func TestExtractRetryDelayFirstPatternWins(t *testing.T) {
	seconds, ok := ExtractRetryDelay("wait 99 seconds; retry_delay { seconds: 7 }")
	require.True(t, ok)
	require.Equal(t, 7, seconds)
}

func TestExtractRetryDelayIsPure(t *testing.T) {
	message := "please wait 17 seconds"
	for i := 0; i < 5; i++ {
		seconds, ok := ExtractRetryDelay(message)
		require.True(t, ok)
		require.Equal(t, 17, seconds)
	}
}

func TestExponentialPolicySeries(t *testing.T) {
	policy := ExponentialPolicy{Base: 30 * time.Second, Cap: 300 * time.Second}

	expected := []time.Duration{
		30 * time.Second,
		60 * time.Second,
		120 * time.Second,
		240 * time.Second,
		300 * time.Second, // 480 capped
		300 * time.Second,
	}
	for attempt, want := range expected {
		decision := policy.Compute("no hint", attempt)
		require.Equal(t, want, decision.Wait, "attempt %d", attempt)
		require.Equal(t, SourceExponential, decision.Source)
	}
}

func TestExponentialPolicyPrefersAPIDelay(t *testing.T) {
	policy := ExponentialPolicy{Base: 30 * time.Second, Cap: 300 * time.Second}

	decision := policy.Compute("retry_delay { seconds: 42 }", 3)
	require.Equal(t, 52*time.Second, decision.Wait)
	require.Equal(t, SourceAPISpecified, decision.Source)
}

func TestFlatPolicy(t *testing.T) {
	policy := FlatPolicy{Default: 70 * time.Second}

	decision := policy.Compute("no hint", 2)
	require.Equal(t, 70*time.Second, decision.Wait)
	require.Equal(t, SourceFlat, decision.Source)

	decision = policy.Compute("retry_delay { seconds: 5 }", 0)
	require.Equal(t, 15*time.Second, decision.Wait)
	require.Equal(t, SourceAPISpecified, decision.Source)
}

func TestFixedPolicyIgnoresErrorText(t *testing.T) {
	policy := FixedPolicy{Wait: 60 * time.Second}

	decision := policy.Compute("retry_delay { seconds: 999 }", 4)
	require.Equal(t, 60*time.Second, decision.Wait)
	require.Equal(t, SourceFlat, decision.Source)
}
