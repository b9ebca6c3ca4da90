// Package reembed regenerates chunk embedding vectors in bulk, for use
// after an embedding model change. It processes chunks in batches with
// retry and progress reporting.
package reembed
