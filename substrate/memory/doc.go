// Package memory provides an in-process substrate implementation.
//
// Each registration gets a dedicated worker pool sized to its policy's
// concurrency, an optional sliding-window rate limiter, exponential
// retry backoff, and duplicate suppression keyed by event ID. Delivery
// is asynchronous; use Drain in tests to wait for the pipeline to
// settle.
package memory
