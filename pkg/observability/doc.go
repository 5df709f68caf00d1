/*
Package observability provides lifecycle hooks for monitoring the scrambler.

It includes Prometheus metrics for transitions, frames, advances and flips,
and structured logging hooks that audit the same events.
*/
package observability
