package runtime

import "sync"

// CancelReason names why a run was cancelled.
type CancelReason string

const (
	CancelUserRequested  CancelReason = "user_requested"
	CancelTimeout        CancelReason = "timeout"
	CancelBudgetExceeded CancelReason = "budget_exhausted"
	CancelPolicy         CancelReason = "policy_violation"
	CancelShutdown       CancelReason = "system_shutdown"
)

// CancellationToken is a one-shot, idempotent cancellation signal for a
// single run. The first call to Cancel wins; later calls are no-ops so
// callers racing to cancel (a user DELETE alongside a budget violation)
// never need to coordinate.
type CancellationToken struct {
	mu       sync.Mutex
	done     chan struct{}
	reason   CancelReason
	canceled bool
}

// NewCancellationToken returns a token that has not yet been cancelled.
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{done: make(chan struct{})}
}

// Cancel marks the token cancelled with reason. Only the first call takes
// effect; its reason is the one later observed via Reason.
func (t *CancellationToken) Cancel(reason CancelReason) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canceled {
		return
	}
	t.canceled = true
	t.reason = reason
	close(t.done)
}

// Done returns a channel closed once Cancel has been called, suitable for
// use in a select alongside a context's Done channel.
func (t *CancellationToken) Done() <-chan struct{} {
	return t.done
}

// Canceled reports whether Cancel has been called.
func (t *CancellationToken) Canceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canceled
}

// Reason returns the reason passed to the winning Cancel call, or "" if the
// token has not been cancelled.
func (t *CancellationToken) Reason() CancelReason {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reason
}
