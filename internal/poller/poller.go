package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/labbridge/labbridge/internal/alerts"
	"github.com/labbridge/labbridge/internal/notify"
	"github.com/labbridge/labbridge/internal/recipients"
	"github.com/labbridge/labbridge/internal/registry"
	"github.com/labbridge/labbridge/internal/store"
)

// DefaultInterval is the poll period used when none is configured.
const DefaultInterval = 30 * time.Second

// Poller drives the poll/evaluate/notify cycle. It is the only writer of the
// alert engine's cooldown state and the snapshot store.
type Poller struct {
	registry   *registry.Client
	engine     *alerts.Engine
	notifier   notify.Notifier
	recipients *recipients.Set
	store      *store.Store
	interval   time.Duration
}

// New wires a Poller. A non-positive interval falls back to DefaultInterval.
func New(rc *registry.Client, e *alerts.Engine, n notify.Notifier, rs *recipients.Set, st *store.Store, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		registry:   rc,
		engine:     e,
		notifier:   n,
		recipients: rs,
		store:      st,
		interval:   interval,
	}
}

// Run executes the poll loop until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()

	slog.Info("poller started", "interval", p.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("poller stopped")
			return
		case <-t.C:
			p.cycle(ctx)
		}
	}
}

// cycle runs one poll pass. Every failure mode is local: a failed fetch
// skips the cycle, a failed delivery to one recipient does not block the
// rest, and cooldown state is never rolled back.
func (p *Poller) cycle(ctx context.Context) {
	// Nobody to notify — skip the network call entirely.
	if p.recipients.Len() == 0 {
		slog.Debug("poll cycle skipped — no recipients")
		return
	}

	st, err := p.registry.Status(ctx)
	if err != nil {
		slog.Warn("poll cycle failed — will retry next tick", "err", err)
		return
	}
	p.store.Put(st)

	for i := range st.Labs {
		lab := &st.Labs[i]
		for _, a := range p.engine.Evaluate(lab) {
			p.dispatch(ctx, a)
		}
	}
}

// dispatch sends one alert to every known recipient. Delivery failures are
// logged per recipient; the alert's cooldown timestamp was already recorded
// by the engine and is unaffected.
func (p *Poller) dispatch(ctx context.Context, a *alerts.Alert) {
	ids := p.recipients.IDs()
	slog.Warn("alert fired",
		"lab", a.LabID,
		"kind", a.Kind,
		"sensor", a.SensorID,
		"value", a.Value,
		"bound", a.Bound,
		"recipients", len(ids),
	)
	for _, id := range ids {
		if err := p.notifier.Send(ctx, id, a.Message); err != nil {
			slog.Error("alert delivery failed", "chat", id, "lab", a.LabID, "kind", a.Kind, "err", err)
		}
	}
}
