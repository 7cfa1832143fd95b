package router

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"curebird/internal/providers"
)

// Completer is the single capability the pipeline stages and the assistant
// need from the model layer. Tests substitute stubs for it.
type Completer interface {
	Complete(ctx context.Context, req providers.GenerateRequest) (providers.GenerateResponse, providers.ProviderInfo, error)
}

// Auditor records provider attempts. Implementations must not block for long.
type Auditor interface {
	RecordCall(ctx context.Context, rec providers.CallRecord) error
}

var ErrRetriesExhausted = errors.New("provider retries exhausted")

// CallError is returned once the dispatcher gives up on a request.
type CallError struct {
	Type     providers.ErrorType
	Attempts int
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("llm call failed after %d attempt(s) [%s]: %v", e.Attempts, e.Type, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

type RetryPolicy struct {
	MaxRetries  int
	BaseDelay   time.Duration
	MaxJitter   time.Duration
	CallTimeout time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: time.Second, MaxJitter: 500 * time.Millisecond, CallTimeout: 30 * time.Second}
}

// maxBackoff caps the exponential wait between attempts.
const maxBackoff = time.Minute

// Backoff is the wait before retry number attempt+1, without jitter.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt && d < maxBackoff; i++ {
		d <<= 1
	}
	return min(d, maxBackoff)
}

type Dispatcher struct {
	manager *providers.Manager
	policy  RetryPolicy
	auditor Auditor
	logger  zerolog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
	jitter  func(max time.Duration) time.Duration
}

type Option func(*Dispatcher)

func WithAuditor(a Auditor) Option {
	return func(d *Dispatcher) { d.auditor = a }
}

// WithSleep replaces the backoff wait, e.g. with a recorder in tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Dispatcher) { d.sleep = fn }
}

func WithJitter(fn func(max time.Duration) time.Duration) Option {
	return func(d *Dispatcher) { d.jitter = fn }
}

func NewDispatcher(manager *providers.Manager, policy RetryPolicy, logger zerolog.Logger, opts ...Option) *Dispatcher {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	d := &Dispatcher{
		manager: manager,
		policy:  policy,
		logger:  logger.With().Str("component", "dispatcher").Logger(),
		sleep:   sleepContext,
		jitter:  randomJitter,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Complete runs req against the configured providers. Rate-limit and
// transient failures downgrade the tier (one way) and retry with exponential
// backoff plus jitter, rotating providers on each attempt. Other failures
// return immediately. At most MaxRetries+1 attempts are made.
func (d *Dispatcher) Complete(ctx context.Context, req providers.GenerateRequest) (providers.GenerateResponse, providers.ProviderInfo, error) {
	tier := req.Tier
	if tier == "" {
		tier = providers.TierLarge
	}
	reqID := uuid.NewString()
	conversationID := ConversationFrom(ctx)
	var (
		lastErr  error
		lastInfo providers.ProviderInfo
		attempts int
	)
	for attempt := 0; attempt <= d.policy.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return providers.GenerateResponse{}, lastInfo, fmt.Errorf("llm call abandoned: %w", err)
		}
		p, ref, ok := d.pick(attempt, tier)
		if !ok {
			return providers.GenerateResponse{}, lastInfo, &CallError{Type: providers.ErrorPermanent, Attempts: attempts, Err: fmt.Errorf("no provider serves tier %q: %w", tier, providers.ErrPermanent)}
		}
		attempts++
		attemptReq := req
		attemptReq.Tier = tier

		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if d.policy.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, d.policy.CallTimeout)
		}
		start := time.Now()
		resp, info, err := p.Generate(callCtx, attemptReq)
		cancel()
		elapsed := time.Since(start)
		if info.Name == "" {
			info.Name = ref.Name
		}
		lastInfo = info

		rec := providers.CallRecord{
			CallID:         uuid.NewString(),
			Operation:      req.Operation,
			ConversationID: conversationID,
			ProviderName:   info.Name,
			Model:          info.Model,
			Tier:           tier,
			Attempt:        attempt,
			Status:         "ok",
			Latency:        elapsed,
		}
		if err == nil {
			d.record(ctx, rec)
			d.logger.Debug().Str("req_id", reqID).Str("op", req.Operation).Str("provider", info.Name).
				Str("model", info.Model).Str("tier", string(tier)).Int("attempt", attempt).
				Int64("elapsed_ms", elapsed.Milliseconds()).Msg("llm.call.ok")
			return resp, info, nil
		}
		lastErr = err
		errType := providers.ClassifyError(err)
		rec.Status = "failed"
		rec.ErrorType = errType
		d.record(ctx, rec)
		d.logger.Warn().Err(err).Str("req_id", reqID).Str("op", req.Operation).Str("provider", info.Name).
			Str("model", info.Model).Str("tier", string(tier)).Int("attempt", attempt).
			Str("error_type", string(errType)).Int64("elapsed_ms", elapsed.Milliseconds()).Msg("llm.call.failed")

		if ctx.Err() != nil {
			return providers.GenerateResponse{}, info, fmt.Errorf("llm call abandoned: %w", ctx.Err())
		}
		if !errType.Retryable() {
			return providers.GenerateResponse{}, info, &CallError{Type: errType, Attempts: attempts, Err: err}
		}
		if attempt == d.policy.MaxRetries {
			break
		}
		tier = tier.Downgrade()
		delay := d.policy.Backoff(attempt) + d.jitter(d.policy.MaxJitter)
		if err := d.sleep(ctx, delay); err != nil {
			return providers.GenerateResponse{}, info, fmt.Errorf("llm call abandoned: %w", err)
		}
	}
	return providers.GenerateResponse{}, lastInfo, &CallError{
		Type:     providers.ClassifyError(lastErr),
		Attempts: attempts,
		Err:      fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr),
	}
}

// pick rotates through the preferred provider order, skipping providers that
// have no model for tier.
func (d *Dispatcher) pick(attempt int, tier providers.Tier) (providers.LLMProvider, providers.ProviderRef, bool) {
	order := d.manager.PreferredLLMOrder()
	n := len(order)
	for i := 0; i < n; i++ {
		idx := order[(attempt+i)%n]
		p, ref := d.manager.LLMProviderByIndex(idx)
		if providers.SupportsTier(ref.Name, tier) {
			return p, ref, true
		}
	}
	return nil, providers.ProviderRef{}, false
}

func (d *Dispatcher) record(ctx context.Context, rec providers.CallRecord) {
	if d.auditor == nil {
		return
	}
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := d.auditor.RecordCall(auditCtx, rec); err != nil {
		d.logger.Warn().Err(err).Str("call_id", rec.CallID).Msg("llm.audit.failed")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func randomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(max)))
}

type conversationKey struct{}

// WithConversation tags ctx so audited calls carry the conversation id.
func WithConversation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, conversationKey{}, id)
}

func ConversationFrom(ctx context.Context) string {
	id, _ := ctx.Value(conversationKey{}).(string)
	return id
}
