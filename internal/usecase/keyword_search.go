package usecase

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/shelfscout/backend/internal/domain"
	"github.com/shelfscout/backend/internal/infrastructure/spapi"
	"github.com/shelfscout/backend/internal/logging"
)

// Search paging limits
const (
	searchPageSize    = 20
	minSearchScan     = 20
	searchScanFactor  = 1.5
	searchUnrankedPos = 9999999 // sorts after every real rank
)

// KeywordSearchConfig holds configuration for keyword search
type KeywordSearchConfig struct {
	PageDelay time.Duration // pacing between page fetches
}

// KeywordSearcher turns a keyword query into a rank-ordered ASIN list.
type KeywordSearcher struct {
	client  domain.MarketplaceClient
	retrier *RetryingClient
	config  KeywordSearchConfig
	logger  *slog.Logger
}

type rankedASIN struct {
	asin string
	rank int
}

// NewKeywordSearcher creates a new keyword searcher
func NewKeywordSearcher(client domain.MarketplaceClient, retrier *RetryingClient, config KeywordSearchConfig, logger *slog.Logger) *KeywordSearcher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &KeywordSearcher{client: client, retrier: retrier, config: config, logger: logger}
}

// scanLimit is how many candidates are gathered before sorting, so that
// truncation picks the best ranked of a wider pool.
func scanLimit(maxResults int) int {
	return max(minSearchScan, int(math.Floor(float64(maxResults)*searchScanFactor)))
}

// Search pages through catalog results for query and returns up to
// maxResults ASINs sorted by ascending sales rank. Paging stops on an empty
// page, a missing continuation token, the scan limit, or a failed call.
func (s *KeywordSearcher) Search(ctx context.Context, query string, maxResults int) []string {
	query = NormalizeKeywords(query)
	if query == "" || maxResults <= 0 {
		return []string{}
	}

	limit := scanLimit(maxResults)
	logger := s.logger.With("query", query, "max", maxResults, "scan_limit", limit)

	var (
		found   []rankedASIN
		seen    = make(map[string]bool)
		scanned int
		token   string
		pages   int
	)

	for scanned < limit {
		if pages > 0 {
			if err := pause(ctx, s.config.PageDelay); err != nil {
				logger.Info("search abandoned", "error", err)
				break
			}
		}
		pages++

		res := Call(ctx, s.retrier, "searchCatalogItems", func(ctx context.Context) (*domain.CatalogSearchPage, error) {
			return s.client.SearchCatalogItems(ctx, domain.CatalogSearch{
				Keywords:     []string{query},
				IncludedData: []string{"salesRanks"},
				PageSize:     searchPageSize,
				PageToken:    token,
			})
		})
		if !res.OK() || res.Value == nil || len(res.Value.Items) == 0 {
			break
		}

		for _, item := range res.Value.Items {
			scanned++
			if item.ASIN == "" || seen[item.ASIN] {
				continue
			}
			seen[item.ASIN] = true

			rank := searchUnrankedPos
			if r, _, ok := spapi.FirstRank(item.SalesRanks); ok {
				rank = r
			}
			found = append(found, rankedASIN{asin: item.ASIN, rank: rank})
		}

		token = res.Value.NextToken()
		if token == "" {
			break
		}
	}

	slices.SortStableFunc(found, func(a, b rankedASIN) int {
		return cmp.Compare(a.rank, b.rank)
	})

	out := make([]string, 0, min(len(found), maxResults))
	for _, item := range found {
		if len(out) == maxResults {
			break
		}
		out = append(out, item.asin)
	}

	logger.Info("keyword search finished", "pages", pages, "scanned", scanned, "returned", len(out))
	return out
}
