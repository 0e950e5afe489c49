// Package registry is the typed HTTP client for the lab registry service.
// It exposes the registry's status snapshot plus CRUD operations for labs,
// sensors, actuators, and thresholds. All calls are context-aware and use a
// single bounded-timeout http.Client built at construction time.
package registry
