// Package api serves the bridge's diagnostics REST endpoints: bridge health,
// the latest lab snapshot, recent alert firings, and the registry metrics
// probe summary.
package api
