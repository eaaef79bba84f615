package llm

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/dashai/internal/config"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
	"golang.org/x/time/rate"
)

// EstimateTokens estimates the number of tokens in a string.
// Uses a rough approximation: chars/4 + 20% buffer
func EstimateTokens(text string) int {
	return int(float64(len(text)/4) * 1.2)
}

// EstimateMessages estimates tokens for a conversation, including ~4 tokens of
// framing per message.
func EstimateMessages(messages []Message) int {
	total := 0
	for _, msg := range messages {
		total += 4 + EstimateTokens(msg.Content)
	}
	return total
}

// WaitInfo contains information about a rate limit wait
type WaitInfo struct {
	Duration    time.Duration // How long to wait
	Reason      string        // "token bucket cooldown" or "endpoint returned 429"
	Attempt     int           // Current attempt number (1-based, 0 if not a retry)
	MaxAttempts int           // Maximum number of attempts (0 if not a retry)
}

// WaitCallback is called when the client needs to wait due to rate limiting.
// It should block for the specified duration or until ctx is cancelled.
// If nil, the client sleeps itself.
type WaitCallback func(ctx context.Context, info WaitInfo) error

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	limiter *rate.Limiter
	mu      sync.Mutex
	onWait  WaitCallback
}

// NewTokenBucket creates a token bucket allowing tokensPerMinute with a burst
// of roughly ten seconds' worth of tokens.
func NewTokenBucket(tokensPerMinute int) *TokenBucket {
	if tokensPerMinute <= 0 {
		tokensPerMinute = 60000
	}
	burst := tokensPerMinute / 6
	if burst < 1000 {
		burst = 1000
	}
	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Limit(float64(tokensPerMinute)/60.0), burst),
	}
}

// SetWaitCallback sets a callback to be invoked when waiting for tokens
func (tb *TokenBucket) SetWaitCallback(cb WaitCallback) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.onWait = cb
}

// Wait blocks until tokens are available. Requests larger than the burst are
// clamped to the burst so they are delayed rather than rejected.
func (tb *TokenBucket) Wait(ctx context.Context, tokens int) error {
	tb.mu.Lock()
	onWait := tb.onWait
	tb.mu.Unlock()

	if burst := tb.limiter.Burst(); tokens > burst {
		tokens = burst
	}

	reservation := tb.limiter.ReserveN(time.Now(), tokens)
	delay := reservation.Delay()
	if delay <= 0 {
		return nil
	}

	if err := sleep(ctx, onWait, WaitInfo{Duration: delay, Reason: "token bucket cooldown"}); err != nil {
		reservation.Cancel()
		return err
	}
	return nil
}

// RateLimitedClient wraps a Completer with a token bucket and 429 retries
type RateLimitedClient struct {
	inner  Completer
	bucket *TokenBucket
	cfg    config.RateLimitConfig
	log    *logging.Logger

	mu     sync.Mutex
	onWait WaitCallback
}

// NewRateLimitedClient creates a new rate-limited client wrapper
func NewRateLimitedClient(inner Completer, cfg config.RateLimitConfig, log *logging.Logger) *RateLimitedClient {
	return &RateLimitedClient{
		inner:  inner,
		bucket: NewTokenBucket(cfg.TokensPerMinute),
		cfg:    cfg,
		log:    logging.Or(log),
	}
}

// SetWaitCallback sets a callback used for both token bucket and 429 waits.
func (c *RateLimitedClient) SetWaitCallback(cb WaitCallback) {
	c.mu.Lock()
	c.onWait = cb
	c.mu.Unlock()
	c.bucket.SetWaitCallback(cb)
}

func (c *RateLimitedClient) waitCallback() WaitCallback {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onWait
}

// Complete waits for budget, then retries 429 responses with backoff.
func (c *RateLimitedClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	estimated := EstimateMessages(messages) + opts.MaxTokens
	c.log.Debug("rate limit: estimated tokens", logging.Count(estimated))

	if err := c.bucket.Wait(ctx, estimated); err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.backoffWait(ctx, attempt); err != nil {
				return "", err
			}
		}

		text, err := c.inner.Complete(ctx, messages, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isRateLimitError(err) {
			return "", err
		}
		c.log.Warn("rate limit hit",
			logging.Attempt(attempt+1),
			logging.F("max_attempts", c.cfg.MaxRetries+1),
			logging.Error(err),
		)
	}
	return "", lastErr
}

// Stream waits for budget and retries a stream that fails with 429 before
// producing any text. Once text has been forwarded the error is passed through.
func (c *RateLimitedClient) Stream(ctx context.Context, messages []Message, opts Options) <-chan StreamChunk {
	ch := make(chan StreamChunk, 100)

	go func() {
		defer close(ch)

		if err := c.bucket.Wait(ctx, EstimateMessages(messages)+opts.MaxTokens); err != nil {
			ch <- StreamChunk{Type: ChunkError, Error: err}
			return
		}

		var lastErr error
		for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
			if attempt > 0 {
				if err := c.backoffWait(ctx, attempt); err != nil {
					ch <- StreamChunk{Type: ChunkError, Error: err}
					return
				}
			}

			sent := false
			retry := false
			for chunk := range c.inner.Stream(ctx, messages, opts) {
				if chunk.Type == ChunkError && !sent && isRateLimitError(chunk.Error) {
					lastErr = chunk.Error
					retry = true
					continue
				}
				if chunk.Type == ChunkText {
					sent = true
				}
				ch <- chunk
			}
			if !retry {
				return
			}
			c.log.Warn("rate limit hit on stream", logging.Attempt(attempt+1), logging.Error(lastErr))
		}

		ch <- StreamChunk{Type: ChunkError, Error: lastErr}
	}()

	return ch
}

func (c *RateLimitedClient) backoffWait(ctx context.Context, attempt int) error {
	return sleep(ctx, c.waitCallback(), WaitInfo{
		Duration:    c.calculateBackoff(attempt),
		Reason:      "endpoint returned 429",
		Attempt:     attempt,
		MaxAttempts: c.cfg.MaxRetries,
	})
}

// calculateBackoff returns baseDelay * 2^(attempt-1) plus up to 25% jitter,
// capped at maxDelay.
func (c *RateLimitedClient) calculateBackoff(attempt int) time.Duration {
	backoff := float64(c.cfg.BaseDelay) * math.Pow(2, float64(attempt-1))
	backoff += backoff * 0.25 * rand.Float64()
	if backoff > float64(c.cfg.MaxDelay) {
		backoff = float64(c.cfg.MaxDelay)
	}
	return time.Duration(backoff)
}

func sleep(ctx context.Context, cb WaitCallback, info WaitInfo) error {
	if cb != nil {
		return cb(ctx, info)
	}
	t := time.NewTimer(info.Duration)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isRateLimitError checks if an error is a rate limit (429) error
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if dasherr.HasCode(err, dasherr.CodeRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests")
}
