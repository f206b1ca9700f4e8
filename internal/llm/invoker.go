package llm

import (
	"context"
	"fmt"

	"github.com/newsloom/newsloom/internal/quota"
)

// DefaultSystemInstruction is attached to requests that do not set their own.
const DefaultSystemInstruction = "You are a helpful AI assistant that can analyze news content and generate comprehensive reports."

// Invoker wraps a Driver with proactive rate limiting and quota-aware
// retries. The retry driver owns both: its limiter is acquired before each
// attempt and cleared when a quota error indicates the upstream window reset.
type Invoker struct {
	Driver Driver
	Retry  *quota.Driver

	// Model and Temperature fill in requests that leave them unset.
	Model       string
	Temperature *float64
}

// Invoke sends the request under the retry policy.
func (i *Invoker) Invoke(ctx context.Context, req *Request) (*Response, error) {
	if i == nil || i.Driver == nil {
		return nil, fmt.Errorf("llm invoker is not configured")
	}
	if req != nil {
		if req.System == "" {
			req.System = DefaultSystemInstruction
		}
		if req.Model == "" {
			req.Model = i.Model
		}
		if req.Temperature == nil {
			req.Temperature = i.Temperature
		}
	}

	return quota.Do(ctx, i.Retry, func(ctx context.Context) (*Response, error) {
		return i.Driver.Complete(ctx, req)
	})
}
