package alerts

import (
	"fmt"
	"sync"
	"time"

	"github.com/labbridge/labbridge/internal/registry"
)

const (
	// DefaultCooldown is the minimum gap between two firings of the same
	// (lab, kind) pair when no cooldown is configured.
	DefaultCooldown = 5 * time.Minute

	maxHistoryLen = 200
)

// Kind is one of the four fixed threshold-violation categories.
type Kind string

const (
	TempHigh Kind = "temperature-high"
	TempLow  Kind = "temperature-low"
	HumHigh  Kind = "humidity-high"
	HumLow   Kind = "humidity-low"
)

// Alert is one firing produced by the engine.
type Alert struct {
	LabID    string    `json:"lab_id"`
	Kind     Kind      `json:"kind"`
	SensorID string    `json:"sensor_id"`
	Value    float64   `json:"value"`
	Bound    float64   `json:"bound"`
	Message  string    `json:"message"`
	FiredAt  time.Time `json:"fired_at"`
}

// Engine evaluates lab snapshots against their thresholds and tracks when
// each (lab, kind) alert last fired. The cooldown map grows with the number
// of distinct (lab, kind) pairs ever seen and resets on restart.
//
// Engine is safe for concurrent use.
type Engine struct {
	cooldown time.Duration

	mu       sync.Mutex
	lastFire map[string]time.Time
	history  []*Alert
	now      func() time.Time // injectable for deterministic tests
}

// New creates an Engine with the given cooldown window.
// A non-positive cooldown falls back to DefaultCooldown.
func New(cooldown time.Duration) *Engine {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Engine{
		cooldown: cooldown,
		lastFire: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Evaluate walks every sensor reading in lab and returns the alerts that
// should fire now. A nil reading field or a nil threshold bound never
// triggers. Firing records the (lab, kind) timestamp unconditionally —
// delivery outcome is the caller's concern and does not affect cooldown
// bookkeeping.
//
// A firing earlier in the same pass updates the cooldown timestamp, so a
// second sensor violating the same (lab, kind) in one pass is suppressed.
func (e *Engine) Evaluate(lab *registry.Lab) []*Alert {
	var fired []*Alert
	thr := lab.Thresholds

	for _, sensor := range lab.Sensors {
		rd := sensor.Reading
		if rd == nil {
			continue
		}
		if rd.T != nil {
			if thr.THigh != nil && *rd.T > *thr.THigh {
				if a := e.fire(lab.LabID, TempHigh, sensor.SensorID, *rd.T, *thr.THigh); a != nil {
					fired = append(fired, a)
				}
			}
			if thr.TLow != nil && *rd.T < *thr.TLow {
				if a := e.fire(lab.LabID, TempLow, sensor.SensorID, *rd.T, *thr.TLow); a != nil {
					fired = append(fired, a)
				}
			}
		}
		if rd.H != nil {
			if thr.HHigh != nil && *rd.H > *thr.HHigh {
				if a := e.fire(lab.LabID, HumHigh, sensor.SensorID, *rd.H, *thr.HHigh); a != nil {
					fired = append(fired, a)
				}
			}
			if thr.HLow != nil && *rd.H < *thr.HLow {
				if a := e.fire(lab.LabID, HumLow, sensor.SensorID, *rd.H, *thr.HLow); a != nil {
					fired = append(fired, a)
				}
			}
		}
	}
	return fired
}

// Recent returns copies of the most recently fired alerts, newest last.
func (e *Engine) Recent() []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Alert, 0, len(e.history))
	for _, a := range e.history {
		out = append(out, *a)
	}
	return out
}

// fire applies the cooldown check for (labID, kind) and, if the alert is
// allowed, records the firing time and returns the Alert. Returns nil when
// suppressed.
func (e *Engine) fire(labID string, kind Kind, sensorID string, value, bound float64) *Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	if last, ok := e.lastFire[key(labID, kind)]; ok && now.Sub(last) < e.cooldown {
		return nil
	}
	e.lastFire[key(labID, kind)] = now

	a := &Alert{
		LabID:    labID,
		Kind:     kind,
		SensorID: sensorID,
		Value:    value,
		Bound:    bound,
		Message:  message(labID, kind, sensorID, value, bound),
		FiredAt:  now,
	}
	e.history = append(e.history, a)
	if len(e.history) > maxHistoryLen {
		e.history = e.history[len(e.history)-maxHistoryLen:]
	}
	return a
}

func key(labID string, kind Kind) string {
	return labID + ":" + string(kind)
}

// message renders the operator-facing alert text.
func message(labID string, kind Kind, sensorID string, value, bound float64) string {
	var metric, op string
	switch kind {
	case TempHigh:
		metric, op = "temp", ">"
	case TempLow:
		metric, op = "temp", "<"
	case HumHigh:
		metric, op = "humidity", ">"
	case HumLow:
		metric, op = "humidity", "<"
	}
	return fmt.Sprintf("ALERT %s: %s %g %s %g (sensor %s)", labID, metric, value, op, bound, sensorID)
}
