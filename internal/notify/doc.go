// Package notify abstracts outbound message delivery to operator chats.
// The core only needs a single "send text to recipient" capability; the
// Telegram adapter implements it and also exposes the inbound update stream
// consumed by the bot loop.
package notify
