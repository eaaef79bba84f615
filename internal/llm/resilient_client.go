package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/abdul-hamid-achik/dashai/internal/config"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
)

// ErrCircuitOpen is the cause attached when the breaker rejects a request.
var ErrCircuitOpen = errors.New("circuit breaker open after repeated failures")

// ResilientClient wraps a Completer with retry logic and circuit breaking.
type ResilientClient struct {
	inner      Completer
	cb         *CircuitBreaker
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	log        *logging.Logger
}

// NewResilientClient wraps the given client with resilience features.
func NewResilientClient(inner Completer, cfg config.RateLimitConfig, log *logging.Logger) *ResilientClient {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 1 * time.Second
	}
	maxDelay := cfg.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}

	log = logging.Or(log)
	cb := NewCircuitBreaker(5, 30*time.Second)
	cb.OnStateChange(func(from, to CircuitState) {
		log.Warn("circuit breaker state changed", logging.From(from.String()), logging.To(to.String()))
	})

	return &ResilientClient{
		inner:      inner,
		cb:         cb,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		log:        log,
	}
}

// Breaker exposes the circuit breaker for inspection.
func (rc *ResilientClient) Breaker() *CircuitBreaker {
	return rc.cb
}

// Complete sends a request with retry and circuit breaker protection.
// Rate-limit errors are not retried here; RateLimitedClient owns those.
func (rc *ResilientClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= rc.maxRetries; attempt++ {
		if !rc.cb.Allow() {
			return "", dasherr.LLMUnavailable(ErrCircuitOpen)
		}

		text, err := rc.inner.Complete(ctx, messages, opts)
		if err == nil {
			rc.cb.RecordSuccess()
			return text, nil
		}
		lastErr = err

		if dasherr.HasCode(err, dasherr.CodeRateLimited) {
			rc.cb.RecordFailure()
			return "", err
		}
		if !dasherr.IsRetryable(err) {
			// a rejected request says nothing about endpoint health
			rc.cb.RecordSuccess()
			return "", err
		}

		rc.cb.RecordFailure()
		if attempt == rc.maxRetries || ctx.Err() != nil {
			break
		}

		delay := rc.backoff(attempt)
		rc.log.Debug("retrying completion", logging.Attempt(attempt+1), logging.Duration(delay), logging.Error(err))
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}
	return "", lastErr
}

// Stream streams with circuit breaker protection (no retry for streams).
func (rc *ResilientClient) Stream(ctx context.Context, messages []Message, opts Options) <-chan StreamChunk {
	if !rc.cb.Allow() {
		return errorStream(dasherr.LLMUnavailable(ErrCircuitOpen))
	}

	innerCh := rc.inner.Stream(ctx, messages, opts)
	outCh := make(chan StreamChunk, 100)
	go func() {
		defer close(outCh)
		var streamErr error
		for chunk := range innerCh {
			if chunk.Type == ChunkError && streamErr == nil {
				streamErr = chunk.Error
			}
			outCh <- chunk
		}
		if streamErr != nil && dasherr.IsRetryable(streamErr) {
			rc.cb.RecordFailure()
		} else {
			rc.cb.RecordSuccess()
		}
	}()
	return outCh
}

// backoff calculates the delay for the given attempt using exponential backoff with jitter.
func (rc *ResilientClient) backoff(attempt int) time.Duration {
	delay := rc.baseDelay * (1 << uint(attempt))
	if delay > rc.maxDelay {
		delay = rc.maxDelay
	}
	// 50-100% of the calculated delay
	half := int64(delay / 2)
	if half <= 0 {
		return delay
	}
	return time.Duration(half + rand.Int64N(half))
}
