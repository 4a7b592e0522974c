package presence

import "context"

// Registry mirrors per-user live-connection counts to shared storage so
// other marketplace services can render "online" badges. The relay's own
// offline checks read the in-process hub; this mirror is export only and
// every call is best-effort.
type Registry interface {
	ConnectionOpened(ctx context.Context, userID string) error
	ConnectionClosed(ctx context.Context, userID string) error
	StartHeartbeat(ctx context.Context) error
	StopHeartbeat()
	Close() error
}
