package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQuotaExceeded is returned when a call would exceed the shared budget and waiting is disabled or timed out.
var ErrQuotaExceeded = errors.New("quota exceeded")

// QuotaOptions represents options for a shared call budget
type QuotaOptions struct {
	// MaxPerSecond is the maximum number of calls in any sliding second (0 = unlimited)
	MaxPerSecond int
	// MaxPerMinute is the maximum number of calls in any sliding minute (0 = unlimited)
	MaxPerMinute int
	// WaitOnLimit indicates whether to wait for budget (true) or fail immediately (false)
	WaitOnLimit bool
	// WaitTimeout is the maximum time to wait when WaitOnLimit is true
	WaitTimeout time.Duration
	// RetryDelay is the delay between attempts when waiting
	RetryDelay time.Duration
	// Namespace prefixes every key
	Namespace string
}

// NewQuotaOptions creates quota options with default values
func NewQuotaOptions() *QuotaOptions {
	return &QuotaOptions{
		WaitOnLimit: false,
		WaitTimeout: 5 * time.Second,
		RetryDelay:  100 * time.Millisecond,
		Namespace:   "quota",
	}
}

// WithMaxPerSecond sets the per-second budget
func (o *QuotaOptions) WithMaxPerSecond(max int) *QuotaOptions {
	o.MaxPerSecond = max
	return o
}

// WithMaxPerMinute sets the per-minute budget
func (o *QuotaOptions) WithMaxPerMinute(max int) *QuotaOptions {
	o.MaxPerMinute = max
	return o
}

// WithWaitOnLimit sets whether Acquire waits for budget
func (o *QuotaOptions) WithWaitOnLimit(wait bool, timeout time.Duration) *QuotaOptions {
	o.WaitOnLimit = wait
	o.WaitTimeout = timeout
	return o
}

// WithNamespace sets the key namespace
func (o *QuotaOptions) WithNamespace(namespace string) *QuotaOptions {
	o.Namespace = namespace
	return o
}

// Validate validates the quota options
func (o *QuotaOptions) Validate() error {
	if o.MaxPerSecond < 0 || o.MaxPerMinute < 0 {
		return fmt.Errorf("quota limits must be non-negative")
	}
	if o.MaxPerSecond == 0 && o.MaxPerMinute == 0 {
		return fmt.Errorf("at least one limit must be configured (MaxPerSecond or MaxPerMinute)")
	}
	return nil
}

// acquireScript checks and records a call in both sliding windows atomically.
// Scores are unix milliseconds. Returns 1 on success, -1 for the second window, -2 for the minute window.
var acquireScript = redis.NewScript(`
	local tps_key = KEYS[1]
	local tpm_key = KEYS[2]

	local max_tps = tonumber(ARGV[1])
	local max_tpm = tonumber(ARGV[2])
	local member = ARGV[3]
	local now_ms = tonumber(ARGV[4])

	if max_tps > 0 then
		redis.call("ZREMRANGEBYSCORE", tps_key, "-inf", now_ms - 1000)
		if redis.call("ZCARD", tps_key) >= max_tps then
			return -1
		end
	end

	if max_tpm > 0 then
		redis.call("ZREMRANGEBYSCORE", tpm_key, "-inf", now_ms - 60000)
		if redis.call("ZCARD", tpm_key) >= max_tpm then
			return -2
		end
	end

	if max_tps > 0 then
		redis.call("ZADD", tps_key, now_ms, member)
		redis.call("PEXPIRE", tps_key, 2000)
	end

	if max_tpm > 0 then
		redis.call("ZADD", tpm_key, now_ms, member)
		redis.call("PEXPIRE", tpm_key, 61000)
	end

	return 1
`)

// Quota is a call budget shared by every process using the same Redis and key
type Quota struct {
	client     *Client
	key        string
	opts       *QuotaOptions
	tpsKeyName string
	tpmKeyName string
	sequence   atomic.Uint64
}

// NewQuota creates a new shared quota
func NewQuota(client *Client, key string, opts *QuotaOptions) (*Quota, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if opts == nil {
		opts = NewQuotaOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	q := &Quota{client: client, key: key, opts: opts}
	q.tpsKeyName = q.buildKey("tps")
	q.tpmKeyName = q.buildKey("tpm")
	return q, nil
}

// buildKey constructs the full key using Namespace::key::suffix format
func (q *Quota) buildKey(suffix string) string {
	if q.opts.Namespace != "" {
		return q.opts.Namespace + "::" + q.key + "::" + suffix
	}
	return q.key + "::" + suffix
}

// Key returns the quota key
func (q *Quota) Key() string {
	return q.key
}

// Acquire records one call, waiting for budget when configured to
func (q *Quota) Acquire(ctx context.Context) error {
	if !q.opts.WaitOnLimit {
		return q.acquireImmediate(ctx)
	}

	deadline := time.Now().Add(q.opts.WaitTimeout)
	for {
		err := q.acquireImmediate(ctx)
		if err == nil || !errors.Is(err, ErrQuotaExceeded) {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for quota: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(q.opts.RetryDelay):
		}
	}
}

func (q *Quota) acquireImmediate(ctx context.Context) error {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + strconv.FormatUint(q.sequence.Add(1), 10)

	result, err := acquireScript.Run(ctx, q.client.GetClient(),
		[]string{q.tpsKeyName, q.tpmKeyName},
		q.opts.MaxPerSecond,
		q.opts.MaxPerMinute,
		member,
		now.UnixMilli(),
	).Int64()
	if err != nil {
		return fmt.Errorf("failed to evaluate quota %s: %w", q.key, err)
	}

	switch result {
	case 1:
		return nil
	case -1:
		return fmt.Errorf("%w: %d calls per second", ErrQuotaExceeded, q.opts.MaxPerSecond)
	case -2:
		return fmt.Errorf("%w: %d calls per minute", ErrQuotaExceeded, q.opts.MaxPerMinute)
	default:
		return fmt.Errorf("unknown quota result: %d", result)
	}
}
