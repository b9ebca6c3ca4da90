package providers

// services is the default Provider implementation: a plain aggregate of
// independently constructed service instances.
type services struct {
	extractor Extractor
	imager    Imager
	elements  ElementExtractor
	embedder  Embedder
	chunker   Chunker
}

// NewProvider aggregates independently constructed services into a
// single Provider. The caller remains responsible for constructing each
// service; this is just the wiring point.
//
// Returns the Provider interface to keep callers decoupled from the
// aggregate's concrete type.
func NewProvider(extractor Extractor, imager Imager, elements ElementExtractor, embedder Embedder, chunker Chunker) Provider {
	return &services{
		extractor: extractor,
		imager:    imager,
		elements:  elements,
		embedder:  embedder,
		chunker:   chunker,
	}
}

// Extractor returns the text extraction service.
func (s *services) Extractor() Extractor {
	return s.extractor
}

// Imager returns the page imaging service.
func (s *services) Imager() Imager {
	return s.imager
}

// ElementExtractor returns the ADE service.
func (s *services) ElementExtractor() ElementExtractor {
	return s.elements
}

// Embedder returns the text embedding service.
func (s *services) Embedder() Embedder {
	return s.embedder
}

// Chunker returns the text chunking service.
func (s *services) Chunker() Chunker {
	return s.chunker
}

// Close is a no-op; the aggregated services manage their own lifecycle.
func (s *services) Close() error {
	return nil
}
