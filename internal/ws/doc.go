// Package ws broadcasts the current lab snapshot to connected dashboard
// clients over WebSocket on a fixed interval.
package ws
