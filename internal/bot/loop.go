package bot

import (
	"context"
	"log/slog"

	"github.com/labbridge/labbridge/internal/notify"
)

// Loop consumes inbound messages and replies through the notifier. It
// returns when the updates channel closes or ctx is cancelled. A failed
// reply is logged and the loop continues.
func Loop(ctx context.Context, updates <-chan notify.Incoming, d *Dispatcher, n notify.Notifier) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-updates:
			if !ok {
				return
			}
			reply := d.Dispatch(ctx, in.ChatID, in.Text)
			if reply == "" {
				continue
			}
			if err := n.Send(ctx, in.ChatID, reply); err != nil {
				slog.Error("reply delivery failed", "chat", in.ChatID, "err", err)
			}
		}
	}
}
