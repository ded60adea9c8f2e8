// Package logging provides structured logging for Gray Bridge processes.
//
// It wraps log/slog with the bridge's default fields and config-driven
// level/format selection. Consumer packages do not import this package
// directly; they declare a minimal Logger interface of their own and
// accept anything that satisfies it, which keeps them testable with a
// recording fake.
package logging
