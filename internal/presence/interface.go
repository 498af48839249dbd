package presence

import "context"

// Oracle answers whether a user currently has an active real-time
// connection. Handlers receive it explicitly; there is no process-wide
// singleton.
type Oracle interface {
	IsOnline(ctx context.Context, userID string) (bool, error)
}

// Tracker maintains presence membership. The websocket gateway drives
// it: connect marks a user online, disconnect marks them offline, and
// pongs refresh the TTL so crashed connections age out.
type Tracker interface {
	Oracle
	SetOnline(ctx context.Context, userID string) error
	Refresh(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
	Close() error
}
