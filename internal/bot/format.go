package bot

import (
	"fmt"
	"strings"

	"github.com/labbridge/labbridge/internal/registry"
)

// FormatStatus renders the full registry snapshot as the operator status
// block: one section per lab with thresholds, sensors, and actuators.
func FormatStatus(st *registry.Status) string {
	if len(st.Labs) == 0 {
		return "No labs registered."
	}

	var b strings.Builder
	for _, lab := range st.Labs {
		fmt.Fprintf(&b, "%s (%s)\n", lab.LabID, lab.Name)
		fmt.Fprintf(&b, "  Thr temp %s..%s hum %s..%s\n",
			bound(lab.Thresholds.TLow), bound(lab.Thresholds.THigh),
			bound(lab.Thresholds.HLow), bound(lab.Thresholds.HHigh))
		fmt.Fprintf(&b, "  Last sensor: %s\n", orNever(lab.LastSensorSeen))
		if lab.Alerts.SensorOffline {
			b.WriteString("  ALERT: sensor offline\n")
		}
		for _, s := range lab.Sensors {
			fmt.Fprintf(&b, "   - %s t=%s h=%s ts=%s\n",
				s.SensorID, readingField(s.Reading, tOf), readingField(s.Reading, hOf), readingTS(s.Reading))
		}
		for _, a := range lab.Actuators {
			fmt.Fprintf(&b, "   - %s %s state=%s ts=%s\n",
				a.ActuatorID, a.Type, stateOf(a.State), stateTS(a.State))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// FormatLabs renders the /list_labs reply.
func FormatLabs(labs []registry.LabSummary) string {
	if len(labs) == 0 {
		return "No labs."
	}
	lines := make([]string, 0, len(labs))
	for _, l := range labs {
		lines = append(lines, fmt.Sprintf("- %s (%s)", l.LabID, l.Name))
	}
	return strings.Join(lines, "\n")
}

// FormatSensors renders the /list_sensors reply.
func FormatSensors(sensors []registry.SensorInfo) string {
	if len(sensors) == 0 {
		return "No sensors."
	}
	lines := make([]string, 0, len(sensors))
	for _, s := range sensors {
		lines = append(lines, fmt.Sprintf("- %s lab=%s type=%s", s.SensorID, s.LabID, s.Type))
	}
	return strings.Join(lines, "\n")
}

// FormatActuators renders the /list_actuators reply.
func FormatActuators(acts []registry.ActuatorInfo) string {
	if len(acts) == 0 {
		return "No actuators."
	}
	lines := make([]string, 0, len(acts))
	for _, a := range acts {
		lines = append(lines, fmt.Sprintf("- %s lab=%s type=%s", a.ActuatorID, a.LabID, a.Type))
	}
	return strings.Join(lines, "\n")
}

func bound(v *float64) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%g", *v)
}

func tOf(r *registry.Reading) *float64 { return r.T }
func hOf(r *registry.Reading) *float64 { return r.H }

func readingField(r *registry.Reading, f func(*registry.Reading) *float64) string {
	if r == nil || f(r) == nil {
		return "?"
	}
	return fmt.Sprintf("%g", *f(r))
}

func readingTS(r *registry.Reading) string {
	if r == nil || r.TS == "" {
		return "?"
	}
	return r.TS
}

func stateOf(s *registry.ActuatorState) string {
	if s == nil || s.State == "" {
		return "?"
	}
	return s.State
}

func stateTS(s *registry.ActuatorState) string {
	if s == nil || s.TS == "" {
		return "?"
	}
	return s.TS
}

func orNever(s string) string {
	if s == "" {
		return "never"
	}
	return s
}
