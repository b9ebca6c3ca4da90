// Package substrate defines the step-execution layer the pipeline
// coordinator runs on.
//
// A substrate routes events to registered handlers and owns the
// mechanics around each invocation: worker pools, retry scheduling with
// exponential backoff, per-subscriber rate limits, attempt timeouts,
// and duplicate suppression by event ID. The coordinator describes WHAT
// runs on WHICH event under WHAT policy; the substrate decides when and
// where.
//
// The in-memory implementation lives in substrate/memory. Alternative
// implementations (a broker-backed substrate, for instance) only need
// to satisfy the Substrate interface.
package substrate
