package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Second

// Client talks to the lab registry's REST API.
// It is safe for concurrent use; the underlying http.Client is built once.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a Client for the registry at baseURL. A non-positive timeout
// falls back to the 5 second default.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Status fetches the registry's full lab snapshot.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var st Status
	if err := c.do(ctx, http.MethodGet, "/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SendCommand asks the registry to apply an actuator action (e.g. ON/OFF).
func (c *Client) SendCommand(ctx context.Context, labID, actuatorID, action, source string) (*Result, error) {
	payload := map[string]string{
		"lab_id":      labID,
		"actuator_id": actuatorID,
		"action":      action,
		"source":      source,
	}
	return c.mutate(ctx, http.MethodPost, "/command", payload)
}

// ListLabs returns the registered labs.
func (c *Client) ListLabs(ctx context.Context) ([]LabSummary, error) {
	var resp struct {
		Labs []LabSummary `json:"labs"`
	}
	if err := c.do(ctx, http.MethodGet, "/labs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Labs, nil
}

// AddLab registers a new lab.
func (c *Client) AddLab(ctx context.Context, labID, name, notes string) (*Result, error) {
	payload := map[string]string{"lab_id": labID, "name": name, "notes": notes}
	return c.mutate(ctx, http.MethodPost, "/labs", payload)
}

// UpdateLab updates fields on an existing lab.
func (c *Client) UpdateLab(ctx context.Context, labID string, fields map[string]any) (*Result, error) {
	return c.mutate(ctx, http.MethodPut, "/lab/"+url.PathEscape(labID), fields)
}

// RemoveLab deletes a lab from the registry.
func (c *Client) RemoveLab(ctx context.Context, labID string) (*Result, error) {
	return c.mutate(ctx, http.MethodDelete, "/lab/"+url.PathEscape(labID), nil)
}

// ListSensors returns registered sensors, optionally filtered by lab.
func (c *Client) ListSensors(ctx context.Context, labID string) ([]SensorInfo, error) {
	path := "/sensors"
	if labID != "" {
		path += "?lab_id=" + url.QueryEscape(labID)
	}
	var resp struct {
		Sensors []SensorInfo `json:"sensors"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sensors, nil
}

// AddSensor registers a sensor under a lab.
func (c *Client) AddSensor(ctx context.Context, labID, sensorID, sensorType string) (*Result, error) {
	payload := map[string]string{"lab_id": labID, "sensor_id": sensorID, "type": sensorType}
	return c.mutate(ctx, http.MethodPost, "/sensors", payload)
}

// UpdateSensor updates fields on an existing sensor.
func (c *Client) UpdateSensor(ctx context.Context, sensorID string, fields map[string]any) (*Result, error) {
	return c.mutate(ctx, http.MethodPut, "/sensor/"+url.PathEscape(sensorID), fields)
}

// RemoveSensor deletes a sensor.
func (c *Client) RemoveSensor(ctx context.Context, sensorID string) (*Result, error) {
	return c.mutate(ctx, http.MethodDelete, "/sensor/"+url.PathEscape(sensorID), nil)
}

// ListActuators returns registered actuators, optionally filtered by lab.
func (c *Client) ListActuators(ctx context.Context, labID string) ([]ActuatorInfo, error) {
	path := "/actuators"
	if labID != "" {
		path += "?lab_id=" + url.QueryEscape(labID)
	}
	var resp struct {
		Actuators []ActuatorInfo `json:"actuators"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Actuators, nil
}

// AddActuator registers an actuator under a lab.
func (c *Client) AddActuator(ctx context.Context, labID, actuatorID, actuatorType string) (*Result, error) {
	payload := map[string]string{"lab_id": labID, "actuator_id": actuatorID, "type": actuatorType}
	return c.mutate(ctx, http.MethodPost, "/actuators", payload)
}

// UpdateActuator updates fields on an existing actuator.
func (c *Client) UpdateActuator(ctx context.Context, actuatorID string, fields map[string]any) (*Result, error) {
	return c.mutate(ctx, http.MethodPut, "/actuator/"+url.PathEscape(actuatorID), fields)
}

// RemoveActuator deletes an actuator.
func (c *Client) RemoveActuator(ctx context.Context, actuatorID string) (*Result, error) {
	return c.mutate(ctx, http.MethodDelete, "/actuator/"+url.PathEscape(actuatorID), nil)
}

// UpdateThresholds sets one or more threshold bounds on a lab.
// Keys are t_low, t_high, h_low, h_high.
func (c *Client) UpdateThresholds(ctx context.Context, labID string, values map[string]float64) (*Result, error) {
	payload := make(map[string]any, len(values))
	for k, v := range values {
		payload[k] = v
	}
	return c.mutate(ctx, http.MethodPut, "/threshold/"+url.PathEscape(labID), payload)
}

// Permissions fetches the registry's permission map.
func (c *Client) Permissions(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := c.do(ctx, http.MethodGet, "/permissions", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// --- internal ---------------------------------------------------------------

// mutate performs a mutating request and decodes the registry's uniform
// {ok, error} response. A non-2xx status with a decodable body still yields
// the registry's Result, since the registry reports validation errors in-band.
func (c *Client) mutate(ctx context.Context, method, path string, payload any) (*Result, error) {
	var res Result
	if err := c.do(ctx, method, path, payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// do performs one HTTP round-trip and decodes the JSON body into out.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("registry: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("registry: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("registry: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	// Registry error responses (4xx) carry the same JSON shape as success
	// responses, so decode regardless. 5xx bodies are not trusted.
	if resp.StatusCode >= 500 {
		return fmt.Errorf("registry: %s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("registry: %s %s: decode response: %w", method, path, err)
	}
	return nil
}
