// Package manager owns the active categorization ruleset of a long-running
// process.
//
// A Manager parses the configured rule file into an immutable Ruleset and
// publishes it through an atomic pointer, so request handlers call Current
// without locking and keep using the Ruleset they got even while a reload
// swaps in a new one. A reload that fails to read, parse or (in strict mode)
// lint leaves the previous Ruleset active.
//
// Reloads are triggered explicitly (Reload), by file system events (Watch,
// fsnotify with debouncing) or periodically (StartSchedule, cron syntax). A
// reload whose file checksum equals the active one is skipped.
package manager
