// Package mailbox provides the mail-transport boundary: dialing the remote
// mailbox, searching by sender within a lookback window, and fetching raw
// messages. The extraction pipeline only sees these interfaces so tests can
// substitute a fake mailbox.
package mailbox

import (
	"context"
	"time"
)

// Connection is an authenticated session against one mailbox.
type Connection interface {
	// Search returns the UIDs of messages from the given sender address
	// received since the given date, in mailbox order (oldest first).
	Search(ctx context.Context, fromAddr string, since time.Time) ([]uint32, error)

	// Fetch retrieves the raw RFC-822 bytes of one message.
	Fetch(ctx context.Context, uid uint32) ([]byte, error)

	// Logout releases the connection. Safe to defer; errors are advisory.
	Logout() error
}

// Dialer opens connections. The extraction orchestrator owns the resulting
// connection for the duration of a run and always releases it.
type Dialer interface {
	Dial(ctx context.Context) (Connection, error)
}
