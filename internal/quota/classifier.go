package quota

import "strings"

// quotaIndicators mark an upstream error as a transient quota or rate-limit
// condition. Providers do not expose a uniform structured retriable code, so
// the error text is the only consistent signal.
var quotaIndicators = []string{
	"429",
	"quota",
	"rate limit",
	"resourceexhausted",
	"exceeded your current quota",
	"rate-limits",
	"too many requests",
}

// IsQuotaMessage reports whether the message describes a quota or rate-limit
// error. Matching is a case-insensitive substring check; it is pure and never
// calls out.
func IsQuotaMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, indicator := range quotaIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// IsQuotaError reports whether err represents a quota or rate-limit error.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	return IsQuotaMessage(err.Error())
}
