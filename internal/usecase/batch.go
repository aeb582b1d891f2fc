package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shelfscout/backend/internal/domain"
	"github.com/shelfscout/backend/internal/logging"
)

// BatchRequest is either a list of identifiers (ASINs or JANs) or a keyword query.
type BatchRequest struct {
	Identifiers []string `json:"identifiers"`
	Keywords    string   `json:"keywords"`
	MaxResults  int      `json:"maxResults"`
}

// BatchResult collects the rows of one run
type BatchResult struct {
	RunID      string                  `json:"runId"`
	Records    []*domain.ProductRecord `json:"records"`
	Unresolved []string                `json:"unresolved"`
	Canceled   bool                    `json:"canceled"`
}

// BatchService drives a whole run: keyword search or identifier resolution
// first, then one aggregation per ASIN, strictly in sequence.
type BatchService struct {
	products   *ProductService
	searcher   *KeywordSearcher
	defaultMax int
	logger     *slog.Logger
}

// NewBatchService creates a new batch service
func NewBatchService(products *ProductService, searcher *KeywordSearcher, defaultMax int, logger *slog.Logger) *BatchService {
	if defaultMax <= 0 {
		defaultMax = 50
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &BatchService{products: products, searcher: searcher, defaultMax: defaultMax, logger: logger}
}

// Run executes req. onRecord, if set, is called after each aggregated record so
// callers can stream progress. A bad identifier never stops the run; canceling
// ctx stops it between identifiers and keeps the rows gathered so far.
func (b *BatchService) Run(ctx context.Context, req BatchRequest, onRecord func(*domain.ProductRecord)) (*BatchResult, error) {
	keywords := NormalizeKeywords(req.Keywords)
	if keywords == "" && len(req.Identifiers) == 0 {
		return nil, fmt.Errorf("%w: identifiers or keywords are required", domain.ErrInvalidRequest)
	}

	result := &BatchResult{
		RunID:      uuid.NewString(),
		Records:    []*domain.ProductRecord{},
		Unresolved: []string{},
	}
	logger := b.logger.With("run", result.RunID)

	var targets []target
	if keywords != "" {
		maxResults := req.MaxResults
		if maxResults <= 0 {
			maxResults = b.defaultMax
		}
		for _, asin := range b.searcher.Search(ctx, keywords, maxResults) {
			targets = append(targets, target{asin: asin})
		}
		logger.Info("keyword phase complete", "keywords", keywords, "asins", len(targets))
	} else {
		targets = b.resolveTargets(ctx, req.Identifiers, result)
		logger.Info("identifier phase complete", "asins", len(targets), "unresolved", len(result.Unresolved))
	}

	for i, t := range targets {
		if ctx.Err() != nil {
			result.Canceled = true
			logger.Info("run canceled", "done", i, "total", len(targets))
			break
		}

		record := b.products.AggregateDetail(ctx, t.asin)
		if record.JAN == "" {
			record.JAN = t.jan
		}
		result.Records = append(result.Records, record)
		if onRecord != nil {
			onRecord(record)
		}
		logger.Debug("progress", "done", i+1, "total", len(targets))
	}

	return result, nil
}

type target struct {
	asin string
	jan  string
}

func (b *BatchService) resolveTargets(ctx context.Context, raw []string, result *BatchResult) []target {
	var targets []target
	for _, id := range ParseIdentifiers(strings.Join(raw, "\n")) {
		switch id.Kind {
		case KindASIN:
			targets = append(targets, target{asin: id.Value})
		case KindJAN:
			asin, ok := b.products.ResolveIdentifier(ctx, id.Value)
			if !ok {
				result.Unresolved = append(result.Unresolved, id.Value)
				continue
			}
			targets = append(targets, target{asin: asin, jan: id.Value})
		default:
			result.Unresolved = append(result.Unresolved, id.Value)
		}
	}
	return targets
}
