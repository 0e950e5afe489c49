// Package bot translates operator chat commands into registry API calls.
// Commands are tokenized shell-style, so quoted arguments ("Chem Lab") work.
// Argument-count errors produce a usage string; everything else is delegated
// to the registry's own validation. The dispatcher is transport-free — the
// Telegram plumbing lives in the notify package and the Loop glue here.
package bot
