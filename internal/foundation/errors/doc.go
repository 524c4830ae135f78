// Package errors provides the classified error primitives used across wristrelay.
//
// Every package that can fail in a way an operator should see builds its errors
// through this package so the CLI can map them to exit codes and log levels.
//
// Key features:
//   - ErrorCategory: where the failure came from (config, protocol, transport, settings, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - RetryStrategy: whether the caller may try again
//   - ClassifiedError: structured error carrying the above plus context
//   - ErrorBuilder: fluent construction
//
// Example usage:
//
//	err := errors.TransportError("publish failed").
//		WithContext("subject", subject).
//		WithCause(natsErr).
//		Build()
package errors
