package services

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// GenerationAttempt issues a single bounded call against one model and
// returns the normalized payload (a data URI for image chains). An empty
// payload with a nil error still counts as a failed candidate.
type GenerationAttempt func(ctx context.Context, model LLMModelName) (string, error)

// ChainResult reports which candidate produced the payload.
type ChainResult struct {
	Payload string
	Model   LLMModelName
	OK      bool
}

// TryModelsInOrder walks candidates strictly in listed order, one attempt
// each, no retries, no backoff. Any error or empty payload is logged and
// falls through to the next candidate. Exhaustion is a soft failure: the
// zero ChainResult, never an error — callers decide what a miss means.
func TryModelsInOrder(ctx context.Context, tag string, candidates []LLMModelName, timeout time.Duration, attempt GenerationAttempt) ChainResult {
	for _, model := range candidates {
		fmt.Printf("[%s] Trying %s...\n", tag, model.String())
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		payload, err := attempt(attemptCtx, model)
		cancel()
		if err != nil {
			fmt.Printf("[%s] %s error: %v\n", tag, model.String(), err)
			continue
		}
		if payload == "" {
			fmt.Printf("[%s] %s returned no usable payload\n", tag, model.String())
			continue
		}
		fmt.Printf("[%s] Success with %s\n", tag, model.String())
		return ChainResult{Payload: payload, Model: model, OK: true}
	}
	if len(candidates) > 0 {
		sentry.CaptureMessage(fmt.Sprintf("[%s] all %d model candidates exhausted", tag, len(candidates)))
	}
	return ChainResult{}
}
