// Package audit delivers session audit events off the request path.
//
// A [Dispatcher] owns a bounded queue and one worker goroutine that hands
// each [Event] to a [Sink]. Sinks are provided for channels, newline JSON,
// and log/slog.
//
// # Architecture boundaries
//
// This package buffers and delivers. The engine decides which events exist
// and what they contain.
//
// # What this package must NOT do
//
//   - Import goSession or any sibling internal package.
//   - Receive or log raw session tokens.
//   - Block the caller when DropIfFull is set.
package audit
