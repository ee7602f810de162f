package moderation

import "context"

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a user-facing acknowledgment of an action.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notification) {}

type notifierKey struct{}

// WithNotifier scopes acknowledgments for actions run with ctx to n, in place of
// the controller's own notifier. The console uses it to route toasts to the
// response of the request that triggered the action.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierKey{}, n)
}

func (c *Controller) notify(ctx context.Context, n Notification) {
	if scoped, ok := ctx.Value(notifierKey{}).(Notifier); ok && scoped != nil {
		scoped.Notify(ctx, n)
		return
	}
	c.notifier.Notify(ctx, n)
}
