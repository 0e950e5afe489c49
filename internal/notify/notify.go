package notify

import "context"

// Notifier delivers a text message to one chat.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Func adapts a plain function to the Notifier interface.
type Func func(ctx context.Context, chatID int64, text string) error

// Send implements Notifier.
func (f Func) Send(ctx context.Context, chatID int64, text string) error {
	return f(ctx, chatID, text)
}

// Incoming is one inbound text message from a chat.
type Incoming struct {
	ChatID int64
	Text   string
}
