// Package probe scrapes the registry's Prometheus metrics endpoint and
// condenses it into a small operator-facing summary for the /diag bot
// command and the diagnostics API.
package probe
