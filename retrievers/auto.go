package retrievers

import (
	"context"
	"log/slog"

	"github.com/promptctx/promptctx/config"
	"github.com/promptctx/promptctx/schema"
)

// Auto picks a strategy per query: simple queries (few tags, short
// description) go to the cheap tag path, complex ones to the hybrid path
// when semantic re-ranking is enabled. The thresholds come from
// configuration, never from constants in this file.
type Auto struct {
	tagBased *TagBased
	hybrid   *Hybrid // nil when semantic dispatch is disabled
	cfg      config.Auto
	logger   *slog.Logger
}

var _ schema.Retriever = (*Auto)(nil)

// NewAuto creates an adaptive retriever. hybrid may be nil only when
// cfg.UseSemanticForComplex is false; with semantic dispatch enabled the
// hybrid strategy is a construction-time requirement.
func NewAuto(tagBased *TagBased, hybrid *Hybrid, cfg config.Auto, logger *slog.Logger) (*Auto, error) {
	if tagBased == nil {
		return nil, ErrMissingStore
	}
	if cfg.UseSemanticForComplex && hybrid == nil {
		return nil, ErrMissingEmbedder
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Auto{
		tagBased: tagBased,
		hybrid:   hybrid,
		cfg:      cfg,
		logger:   logger.With("component", "auto_retriever"),
	}, nil
}

// Retrieve dispatches to the chosen strategy for this query.
func (r *Auto) Retrieve(ctx context.Context, query schema.Query) ([]schema.ScoredItem, error) {
	if r.isSimple(query) {
		r.logger.DebugContext(ctx, "Dispatching simple query to tag retrieval",
			"tags", len(query.Tags), "description_len", len(query.Description))
		return r.tagBased.Retrieve(ctx, query)
	}
	if r.cfg.UseSemanticForComplex {
		r.logger.DebugContext(ctx, "Dispatching complex query to hybrid retrieval",
			"tags", len(query.Tags), "description_len", len(query.Description))
		return r.hybrid.Retrieve(ctx, query)
	}
	return r.tagBased.Retrieve(ctx, query)
}

func (r *Auto) isSimple(query schema.Query) bool {
	return len(query.Tags) < r.cfg.SimpleTaskThreshold &&
		len(query.Description) <= r.cfg.DescriptionLengthThreshold
}
