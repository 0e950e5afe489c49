// Package store holds the most recent registry status snapshot in memory so
// the diagnostics API and the WebSocket hub can serve it without extra
// registry round-trips.
package store
