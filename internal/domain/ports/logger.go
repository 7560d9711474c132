package ports

import "context"

// Logger is an abstract logger so the domain stays decoupled from concrete
// logging backends.
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
}
