// Package alerts implements the threshold evaluation engine for lab sensor
// readings. Each lab's temperature and humidity readings are compared against
// its configured bounds; firings are de-duplicated per (lab, kind) by a
// cooldown window.
package alerts
