/*
Package clock provides the schedulers that drive the scramble frame loop.

  - Loop: a real-time event loop. Every callback, including work posted with
    Do and Call, runs on the single goroutine started by Run.
  - Virtual: a deterministic scheduler over virtual time, for tests and
    offline rendering. Nothing runs until Advance, Step or RunUntilIdle.
*/
package clock
