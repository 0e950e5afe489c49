package alerts

import (
	"testing"
	"time"

	"github.com/labbridge/labbridge/internal/registry"
)

func fptr(v float64) *float64 { return &v }

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func lab(id string, thr registry.Thresholds, sensors ...registry.Sensor) *registry.Lab {
	return &registry.Lab{LabID: id, Name: id, Thresholds: thr, Sensors: sensors}
}

func sensor(id string, t, h *float64) registry.Sensor {
	return registry.Sensor{
		SensorID: id,
		Reading:  &registry.Reading{T: t, H: h, TS: "2026-08-30T10:00:00Z"},
	}
}

func TestEvaluate_TempHigh(t *testing.T) {
	e := New(5 * time.Minute)
	l := lab("L1", registry.Thresholds{THigh: fptr(30)}, sensor("s1", fptr(35), nil))

	fired := e.Evaluate(l)
	if len(fired) != 1 {
		t.Fatalf("fired: got %d alerts, want 1", len(fired))
	}
	a := fired[0]
	if a.Kind != TempHigh {
		t.Errorf("kind: got %q, want %q", a.Kind, TempHigh)
	}
	if a.LabID != "L1" || a.SensorID != "s1" {
		t.Errorf("ids: got lab=%q sensor=%q", a.LabID, a.SensorID)
	}
	if a.Message != "ALERT L1: temp 35 > 30 (sensor s1)" {
		t.Errorf("message: got %q", a.Message)
	}
}

func TestEvaluate_AllFourKinds(t *testing.T) {
	thr := registry.Thresholds{
		TLow: fptr(10), THigh: fptr(30),
		HLow: fptr(20), HHigh: fptr(70),
	}
	cases := []struct {
		name string
		t, h *float64
		want Kind
	}{
		{"temp high", fptr(31), nil, TempHigh},
		{"temp low", fptr(9), nil, TempLow},
		{"hum high", nil, fptr(71), HumHigh},
		{"hum low", nil, fptr(19), HumLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := New(5 * time.Minute)
			fired := e.Evaluate(lab("L1", thr, sensor("s1", tc.t, tc.h)))
			if len(fired) != 1 {
				t.Fatalf("fired: got %d, want 1", len(fired))
			}
			if fired[0].Kind != tc.want {
				t.Errorf("kind: got %q, want %q", fired[0].Kind, tc.want)
			}
		})
	}
}

func TestEvaluate_AbsentBoundNeverTriggers(t *testing.T) {
	// No thresholds configured at all — extreme readings must not fire.
	e := New(5 * time.Minute)
	l := lab("L2", registry.Thresholds{}, sensor("s1", fptr(1000), fptr(1000)))

	if fired := e.Evaluate(l); len(fired) != 0 {
		t.Fatalf("fired: got %d alerts, want 0", len(fired))
	}
}

func TestEvaluate_NilReadingSkipped(t *testing.T) {
	e := New(5 * time.Minute)
	l := lab("L1", registry.Thresholds{THigh: fptr(30), HHigh: fptr(70)},
		registry.Sensor{SensorID: "s1", Reading: nil},
		sensor("s2", nil, nil),
	)
	if fired := e.Evaluate(l); len(fired) != 0 {
		t.Fatalf("fired: got %d alerts, want 0", len(fired))
	}
}

func TestEvaluate_BoundaryIsNotViolation(t *testing.T) {
	// Comparisons are strict: a reading exactly at the bound does not fire.
	e := New(5 * time.Minute)
	l := lab("L1", registry.Thresholds{TLow: fptr(10), THigh: fptr(30)}, sensor("s1", fptr(30), nil))
	if fired := e.Evaluate(l); len(fired) != 0 {
		t.Fatalf("fired at bound: got %d alerts, want 0", len(fired))
	}
}

func TestCooldown_SuppressesThenRefires(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	e := New(300 * time.Second)
	l := lab("L1", registry.Thresholds{THigh: fptr(30)}, sensor("s1", fptr(35), nil))

	e.now = fixedClock(t0)
	if fired := e.Evaluate(l); len(fired) != 1 {
		t.Fatalf("first pass: got %d alerts, want 1", len(fired))
	}

	e.now = fixedClock(t0.Add(10 * time.Second))
	if fired := e.Evaluate(l); len(fired) != 0 {
		t.Fatalf("within cooldown: got %d alerts, want 0", len(fired))
	}

	e.now = fixedClock(t0.Add(301 * time.Second))
	if fired := e.Evaluate(l); len(fired) != 1 {
		t.Fatalf("after cooldown: got %d alerts, want 1", len(fired))
	}
}

func TestCooldown_ExactElapsedFires(t *testing.T) {
	// Elapsed == cooldown is allowed; only elapsed < cooldown suppresses.
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	e := New(5 * time.Minute)
	l := lab("L1", registry.Thresholds{THigh: fptr(30)}, sensor("s1", fptr(35), nil))

	e.now = fixedClock(t0)
	e.Evaluate(l)

	e.now = fixedClock(t0.Add(5 * time.Minute))
	if fired := e.Evaluate(l); len(fired) != 1 {
		t.Fatalf("at exact cooldown: got %d alerts, want 1", len(fired))
	}
}

func TestCooldown_Idempotence(t *testing.T) {
	// Re-running on an identical snapshot with ~0 elapsed must suppress.
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	e := New(5 * time.Minute)
	e.now = fixedClock(t0)
	l := lab("L1", registry.Thresholds{THigh: fptr(30)}, sensor("s1", fptr(35), nil))

	if fired := e.Evaluate(l); len(fired) != 1 {
		t.Fatalf("first pass: got %d alerts, want 1", len(fired))
	}
	if fired := e.Evaluate(l); len(fired) != 0 {
		t.Fatalf("immediate rerun: got %d alerts, want 0", len(fired))
	}
}

func TestCooldown_SecondSensorSameKindSuppressed(t *testing.T) {
	// Two sensors over t_high in one pass: the first firing records the
	// timestamp, so the second is inside the cooldown window.
	e := New(5 * time.Minute)
	l := lab("L1", registry.Thresholds{THigh: fptr(30)},
		sensor("s1", fptr(35), nil),
		sensor("s2", fptr(36), nil),
	)
	fired := e.Evaluate(l)
	if len(fired) != 1 {
		t.Fatalf("fired: got %d alerts, want 1", len(fired))
	}
	if fired[0].SensorID != "s1" {
		t.Errorf("sensor: got %q, want s1", fired[0].SensorID)
	}
}

func TestCooldown_KindsIndependent(t *testing.T) {
	// temp-high and hum-high on the same lab have independent cooldowns.
	e := New(5 * time.Minute)
	l := lab("L1", registry.Thresholds{THigh: fptr(30), HHigh: fptr(70)},
		sensor("s1", fptr(35), fptr(80)),
	)
	fired := e.Evaluate(l)
	if len(fired) != 2 {
		t.Fatalf("fired: got %d alerts, want 2", len(fired))
	}
}

func TestCooldown_LabsIndependent(t *testing.T) {
	e := New(5 * time.Minute)
	thr := registry.Thresholds{THigh: fptr(30)}

	if fired := e.Evaluate(lab("L1", thr, sensor("s1", fptr(35), nil))); len(fired) != 1 {
		t.Fatalf("L1: got %d alerts, want 1", len(fired))
	}
	if fired := e.Evaluate(lab("L2", thr, sensor("s1", fptr(35), nil))); len(fired) != 1 {
		t.Fatalf("L2: got %d alerts, want 1", len(fired))
	}
}

func TestInvariant_NoTwoFiringsWithinCooldown(t *testing.T) {
	// Hammer the engine across many cycles and verify recorded history never
	// violates the cooldown invariant for any (lab, kind) pair.
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	cooldown := 60 * time.Second
	e := New(cooldown)
	l := lab("L1", registry.Thresholds{THigh: fptr(30)}, sensor("s1", fptr(35), nil))

	for i := 0; i < 500; i++ {
		e.now = fixedClock(t0.Add(time.Duration(i) * 7 * time.Second))
		e.Evaluate(l)
	}

	last := make(map[string]time.Time)
	for _, a := range e.Recent() {
		k := a.LabID + ":" + string(a.Kind)
		if prev, ok := last[k]; ok {
			if a.FiredAt.Sub(prev) < cooldown {
				t.Fatalf("firings %v apart, want >= %v", a.FiredAt.Sub(prev), cooldown)
			}
		}
		last[k] = a.FiredAt
	}
}

func TestRecent_BoundedHistory(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	e := New(time.Second)
	l := lab("L1", registry.Thresholds{THigh: fptr(30)}, sensor("s1", fptr(35), nil))

	for i := 0; i < maxHistoryLen+50; i++ {
		e.now = fixedClock(t0.Add(time.Duration(i) * 2 * time.Second))
		e.Evaluate(l)
	}
	if n := len(e.Recent()); n != maxHistoryLen {
		t.Errorf("history: got %d entries, want %d", n, maxHistoryLen)
	}
}

func TestNew_NonPositiveCooldownDefault(t *testing.T) {
	e := New(0)
	if e.cooldown != DefaultCooldown {
		t.Errorf("cooldown: got %v, want %v", e.cooldown, DefaultCooldown)
	}
}
