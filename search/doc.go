// Package search provides semantic retrieval over processed document
// chunks.
//
// A query is embedded with the same embedder the pipeline used for the
// chunks, matched against stored vectors by cosine similarity, and then
// boosted when the chunk contains every significant query word
// verbatim. Results carry both the matching chunk and its parent
// document.
//
// The SearchMonitor interface exposes the intermediate steps for
// diagnostic tooling; production callers pass nil and get a no-op
// monitor.
package search
