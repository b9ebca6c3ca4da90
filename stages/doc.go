// Package stages holds the concrete pipeline stages: text extraction,
// page imaging, advanced document extraction, chunking, embedding, and
// indexing.
//
// Each stage implements pipeline.Stage over the provider interfaces in
// package providers, so the same stage code runs against real services
// or the mocks in providers/mock. Stages communicate only through
// artifacts: a stage reads its predecessor's output from artifact
// storage via the reference on its trigger event and writes its own
// output the same way. Chunk rows are the exception; the chunking and
// embedding stages share them through the chunk repository because the
// indexing stage and search serve from there.
//
// Bindings wires all six stages into the default pipeline.
package stages
