package registry

// Status is the registry's full snapshot of all labs, returned by GET /status.
// The bridge treats it as an immutable value for the duration of one
// evaluation pass.
type Status struct {
	Labs []Lab `json:"labs"`
}

// Lab is one monitored space: its threshold configuration plus the current
// sensor readings and actuator states.
type Lab struct {
	LabID          string     `json:"lab_id"`
	Name           string     `json:"name"`
	Notes          string     `json:"notes,omitempty"`
	Thresholds     Thresholds `json:"thresholds"`
	LastSensorSeen string     `json:"last_sensor_seen,omitempty"`
	Alerts         LabAlerts  `json:"alerts"`
	Sensors        []Sensor   `json:"sensors"`
	Actuators      []Actuator `json:"actuators"`
}

// Thresholds holds the four independent alert bounds for a lab.
// A nil bound means that side is unbounded and never triggers.
type Thresholds struct {
	TLow  *float64 `json:"t_low"`
	THigh *float64 `json:"t_high"`
	HLow  *float64 `json:"h_low"`
	HHigh *float64 `json:"h_high"`
}

// LabAlerts carries registry-side alert flags included in the snapshot.
type LabAlerts struct {
	SensorOffline bool `json:"sensor_offline"`
}

// Sensor is one registered sensor with its most recent reading, if any.
type Sensor struct {
	SensorID string   `json:"sensor_id"`
	Type     string   `json:"type,omitempty"`
	Reading  *Reading `json:"reading"`
}

// Reading is a single sensor measurement. T and H are nil when the sensor
// has no current value for that field; a nil field must not be compared
// against thresholds.
type Reading struct {
	T  *float64 `json:"t"`
	H  *float64 `json:"h"`
	TS string   `json:"ts"`
}

// Actuator is one registered actuator with its last known state.
type Actuator struct {
	ActuatorID string         `json:"actuator_id"`
	Type       string         `json:"type"`
	State      *ActuatorState `json:"state"`
}

// ActuatorState is the registry's view of an actuator's current state.
type ActuatorState struct {
	State string `json:"state"`
	TS    string `json:"ts"`
}

// Result is the registry's uniform response to mutating operations.
// Validation failures are reported in-band via OK=false and Error.
type Result struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// LabSummary is one entry in GET /labs.
type LabSummary struct {
	LabID string `json:"lab_id"`
	Name  string `json:"name"`
	Notes string `json:"notes,omitempty"`
}

// SensorInfo is one entry in GET /sensors.
type SensorInfo struct {
	SensorID string `json:"sensor_id"`
	LabID    string `json:"lab_id"`
	Type     string `json:"type"`
}

// ActuatorInfo is one entry in GET /actuators.
type ActuatorInfo struct {
	ActuatorID string `json:"actuator_id"`
	LabID      string `json:"lab_id"`
	Type       string `json:"type"`
}
