package stages

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/docpipe/pipeline"
	"github.com/poiesic/docpipe/providers"
	badgerstore "github.com/poiesic/docpipe/storage/badger"
)

// Bindings assembles the default six-stage pipeline over a provider and
// a repository set, resolving each stage's delivery policy from cfg.
func Bindings(p providers.Provider, repos *badgerstore.Repositories, cfg *pipeline.Config, logger *slog.Logger) ([]pipeline.Binding, error) {
	stages := []pipeline.Stage{
		NewExtraction(p.Extractor(), logger),
		NewImaging(p.Imager(), repos.Artifacts, logger),
		NewADE(p.ElementExtractor(), repos.Artifacts, logger),
		NewChunking(p.Chunker(), repos.Artifacts, repos.Chunks, logger),
		NewEmbedding(p.Embedder(), repos.Chunks, logger),
		NewIndexing(repos.Chunks, logger),
	}

	bindings := make([]pipeline.Binding, 0, len(stages))
	for _, stage := range stages {
		policy, err := cfg.PolicyFor(stage.Name())
		if err != nil {
			return nil, fmt.Errorf("resolving policy for %s: %w", stage.Name(), err)
		}
		bindings = append(bindings, pipeline.Binding{Stage: stage, Policy: policy})
	}
	return bindings, nil
}
