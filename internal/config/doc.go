// Package config loads and validates the bridge configuration from a YAML
// file. Secrets (the Telegram bot token) are referenced by environment
// variable name, never stored in the file itself.
package config
