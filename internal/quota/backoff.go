package quota

import (
	"regexp"
	"strconv"
	"time"
)

// Decision sources.
const (
	SourceAPISpecified = "api-specified"
	SourceExponential  = "exponential"
	SourceFlat         = "flat"
)

// apiDelayBuffer is added on top of an API-specified retry delay.
const apiDelayBuffer = 10 * time.Second

// Decision is a computed backoff wait plus where the number came from.
type Decision struct {
	Wait   time.Duration
	Source string
}

// retryDelayPatterns are tried in order; the first match wins. The strict
// `retry_delay { seconds: N }` form comes first, then progressively looser
// phrasings mentioning seconds.
var retryDelayPatterns = []*regexp.Regexp{
	regexp.MustCompile(`retry_delay\s*\{\s*seconds:\s*(\d+)\s*\}`),
	regexp.MustCompile(`seconds:\s*(\d+)`),
	regexp.MustCompile(`(?i)retry.*?(\d+).*?second`),
	regexp.MustCompile(`(?i)wait.*?(\d+).*?second`),
}

// ExtractRetryDelay pulls an API-specified retry delay, in seconds, out of an
// error message. A failed or ambiguous parse reports not-found; it never
// returns an error.
func ExtractRetryDelay(message string) (int, bool) {
	for _, pattern := range retryDelayPatterns {
		match := pattern.FindStringSubmatch(message)
		if len(match) < 2 {
			continue
		}
		seconds, err := strconv.Atoi(match[1])
		if err != nil || seconds < 0 {
			continue
		}
		return seconds, true
	}
	return 0, false
}

// Policy computes how long to wait before retrying a failed attempt.
// attempt is 0-based.
type Policy interface {
	Compute(message string, attempt int) Decision
}

// ExponentialPolicy prefers an API-specified delay (plus buffer) and falls
// back to Base*2^attempt capped at Cap.
type ExponentialPolicy struct {
	Base time.Duration
	Cap  time.Duration
}

// Compute implements Policy.
func (p ExponentialPolicy) Compute(message string, attempt int) Decision {
	if seconds, ok := ExtractRetryDelay(message); ok {
		return Decision{
			Wait:   time.Duration(seconds)*time.Second + apiDelayBuffer,
			Source: SourceAPISpecified,
		}
	}

	wait := p.Base
	for i := 0; i < attempt; i++ {
		wait *= 2
		if wait >= p.Cap {
			wait = p.Cap
			break
		}
	}
	if wait > p.Cap {
		wait = p.Cap
	}
	return Decision{Wait: wait, Source: SourceExponential}
}

// FlatPolicy prefers an API-specified delay (plus buffer) and falls back to a
// flat default wait.
type FlatPolicy struct {
	Default time.Duration
}

// Compute implements Policy.
func (p FlatPolicy) Compute(message string, attempt int) Decision {
	if seconds, ok := ExtractRetryDelay(message); ok {
		return Decision{
			Wait:   time.Duration(seconds)*time.Second + apiDelayBuffer,
			Source: SourceAPISpecified,
		}
	}
	return Decision{Wait: p.Default, Source: SourceFlat}
}

// FixedPolicy always waits the same duration and never inspects the error
// text. The embedding layer's inline retry uses this.
type FixedPolicy struct {
	Wait time.Duration
}

// Compute implements Policy.
func (p FixedPolicy) Compute(string, int) Decision {
	return Decision{Wait: p.Wait, Source: SourceFlat}
}
