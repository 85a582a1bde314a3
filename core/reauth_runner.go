package core

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	defaultReauthMaxAttempts    = 3
	defaultReauthInitialBackoff = 500 * time.Millisecond
	defaultReauthMaxBackoff     = 10 * time.Second
)

type RefreshBackoffScheduler interface {
	NextDelay(attempt int) time.Duration
}

type ExponentialBackoffScheduler struct {
	Initial time.Duration
	Max     time.Duration
}

func (s ExponentialBackoffScheduler) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	initial := s.Initial
	if initial <= 0 {
		initial = defaultReauthInitialBackoff
	}
	max := s.Max
	if max <= 0 {
		max = defaultReauthMaxBackoff
	}

	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}

type ReauthorizeRunResult struct {
	Attempts      int
	PendingReauth bool
	LaunchContext LaunchContext
}

type ReauthorizeRunOptions struct {
	MaxAttempts int
}

// ReauthorizeWithRetry performs silent renewal with bounded retries. A
// strategy that cannot renew without user interaction (no refresh token)
// short-circuits with PendingReauth set; provider denials are treated as
// unrecoverable and are not retried.
func (m *Manager) ReauthorizeWithRetry(ctx context.Context, session *Session, opts ReauthorizeRunOptions) (ReauthorizeRunResult, error) {
	startedAt := time.Now()
	result, err := m.reauthorizeWithRetry(ctx, session, opts)
	fields := map[string]any{
		"attempts":       result.Attempts,
		"pending_reauth": result.PendingReauth,
	}
	if session != nil {
		fields["session_id"] = session.ID
	}
	m.observeOperation(ctx, startedAt, "session_reauthorize", err, fields)
	return result, err
}

func (m *Manager) reauthorizeWithRetry(ctx context.Context, session *Session, opts ReauthorizeRunOptions) (ReauthorizeRunResult, error) {
	if m == nil {
		return ReauthorizeRunResult{}, newDependencyError("core: manager is nil")
	}
	if session == nil || session.Strategy == nil {
		return ReauthorizeRunResult{}, m.mapError(NewInvalidInputError("core: session with a strategy is required"))
	}

	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = defaultReauthMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		launch, err := session.Strategy.Reauthorize(ctx)
		if err == nil {
			if launch == nil {
				// Soft failure: the strategy holds no refresh token, so the
				// interactive flow is the only way forward. Not retryable.
				return ReauthorizeRunResult{Attempts: attempt, PendingReauth: true}, nil
			}
			if m.stateStore != nil {
				if saveErr := m.stateStore.Save(ctx, session.ID, sessionSnapshot(session)); saveErr != nil {
					return ReauthorizeRunResult{Attempts: attempt, LaunchContext: launch}, m.mapError(saveErr)
				}
			}
			return ReauthorizeRunResult{Attempts: attempt, LaunchContext: launch}, nil
		}
		lastErr = err

		if isUnrecoverableReauthError(err) || attempt == maxAttempts {
			return ReauthorizeRunResult{Attempts: attempt, PendingReauth: true}, m.mapError(err)
		}

		delay := defaultReauthInitialBackoff
		if m.backoffScheduler != nil {
			delay = m.backoffScheduler.NextDelay(attempt)
		}
		if waitErr := waitWithContext(ctx, delay); waitErr != nil {
			return ReauthorizeRunResult{Attempts: attempt}, m.mapError(waitErr)
		}
	}

	return ReauthorizeRunResult{Attempts: maxAttempts, PendingReauth: true}, m.mapError(lastErr)
}

func isUnrecoverableReauthError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Category {
		case goerrors.CategoryAuth, goerrors.CategoryAuthz, goerrors.CategoryValidation, goerrors.CategoryNotFound:
			return true
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(msg, "invalid_grant") ||
		strings.Contains(msg, "invalid refresh token")
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
