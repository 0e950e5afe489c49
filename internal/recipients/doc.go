// Package recipients tracks the chats that have interacted with the bridge
// and should receive alert notifications. The set is append-only for the
// lifetime of the process and shared between the bot command path and the
// poll loop.
package recipients
