package notify

import "context"

// Notifier sends fire-and-forget customer notifications. Implementations
// must never block a primary operation on delivery; callers log failures
// and move on.
type Notifier interface {
	// Welcome greets a freshly registered account.
	Welcome(ctx context.Context, email, name string) error

	// OrderPlaced confirms a placed order to the customer.
	OrderPlaced(ctx context.Context, email, reference string, total int64) error
}

// Nop discards all notifications. Used when SMTP is not configured and in
// tests.
type Nop struct{}

func (Nop) Welcome(ctx context.Context, email, name string) error { return nil }

func (Nop) OrderPlaced(ctx context.Context, email, reference string, total int64) error {
	return nil
}
