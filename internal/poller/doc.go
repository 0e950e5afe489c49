// Package poller runs the background poll loop: fetch the registry status
// snapshot on a fixed interval, evaluate every lab against its thresholds,
// and fan fired alerts out to all known recipients. Any cycle failure is
// logged and retried on the next tick; the loop only stops with the process.
package poller
