// Package retry provides automatic retry with exponential backoff for
// transient database failures, used around connection setup and around each
// document's load transaction.
//
// Error classification and backoff are pluggable. The PostgreSQL classifier
// treats connection, resource, serialization, and shutdown conditions as
// transient; anything else (including constraint violations from bad
// documents) is fatal and surfaces immediately as that document's failure.
//
// Executor instances are safe for concurrent use. WithOnRetry returns a new
// configured instance rather than mutating the receiver.
package retry
