package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/shelfscout/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// searchPage builds a page of count items with ranks starting at firstRank,
// counting down so later pages hold better ranks.
func searchPage(prefix string, count, firstRank int, next string) *domain.CatalogSearchPage {
	page := &domain.CatalogSearchPage{NumberOfResults: count}
	for i := 0; i < count; i++ {
		page.Items = append(page.Items, rankedItem(fmt.Sprintf("%s%05d", prefix, i), firstRank-i))
	}
	if next != "" {
		page.Pagination = &domain.Pagination{NextToken: next}
	}
	return page
}

func newTestSearcher(client *MockMarketplaceClient) *KeywordSearcher {
	return NewKeywordSearcher(client, fastRetrier(), KeywordSearchConfig{}, nil)
}

func TestScanLimit(t *testing.T) {
	tests := map[int]int{1: 20, 10: 20, 13: 20, 14: 21, 50: 75, 100: 150}
	for in, want := range tests {
		if got := scanLimit(in); got != want {
			t.Errorf("scanLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestSearch_SortsByRankAndTruncates(t *testing.T) {
	client := NewMockMarketplaceClient()
	client.pages = []*domain.CatalogSearchPage{
		searchPage("B0PAGE1", 20, 5000, "t1"),
		searchPage("B0PAGE2", 20, 3000, "t2"),
		searchPage("B0PAGE3", 20, 1000, "t3"),
		searchPage("B0PAGE4", 20, 500, "t4"),
		searchPage("B0PAGE5", 20, 100, ""),
	}

	got := newTestSearcher(client).Search(context.Background(), "towel", 50)

	require.Len(t, got, 50)
	// 75 candidates are scanned across four pages; the fifth is never fetched.
	assert.Len(t, client.searchCalls, 4)
	assert.Equal(t, "B0PAGE400019", got[0], "best rank from the last scanned page comes first")

	assert.Equal(t, []string{"towel"}, client.searchCalls[0].Keywords)
	assert.Empty(t, client.searchCalls[0].PageToken)
	assert.Equal(t, "t1", client.searchCalls[1].PageToken)
	assert.Equal(t, 20, client.searchCalls[0].PageSize)
}

func TestSearch_DedupAndUnrankedLast(t *testing.T) {
	client := NewMockMarketplaceClient()
	client.pages = []*domain.CatalogSearchPage{{
		Items: []domain.CatalogItem{
			{ASIN: "B0UNRANKED"},
			rankedItem("B0RANK0200", 200),
			rankedItem("B0RANK0100", 100),
			rankedItem("B0RANK0200", 150),
			{ASIN: ""},
		},
	}}

	got := newTestSearcher(client).Search(context.Background(), "towel", 10)

	assert.Equal(t, []string{"B0RANK0100", "B0RANK0200", "B0UNRANKED"}, got)
	assert.Len(t, client.searchCalls, 1)
}

func TestSearch_StopConditions(t *testing.T) {
	t.Run("empty page", func(t *testing.T) {
		client := NewMockMarketplaceClient()
		client.pages = []*domain.CatalogSearchPage{
			searchPage("B0PAGE1", 5, 100, "t1"),
			{},
		}

		got := newTestSearcher(client).Search(context.Background(), "towel", 50)

		assert.Len(t, got, 5)
		assert.Len(t, client.searchCalls, 2)
	})

	t.Run("missing next token", func(t *testing.T) {
		client := NewMockMarketplaceClient()
		client.pages = []*domain.CatalogSearchPage{
			searchPage("B0PAGE1", 20, 100, ""),
			searchPage("B0PAGE2", 20, 50, ""),
		}

		got := newTestSearcher(client).Search(context.Background(), "towel", 50)

		assert.Len(t, got, 20)
		assert.Len(t, client.searchCalls, 1)
	})

	t.Run("failed call keeps gathered results", func(t *testing.T) {
		client := NewMockMarketplaceClient()
		client.searchErr = domain.ErrRemoteFailure

		got := newTestSearcher(client).Search(context.Background(), "towel", 50)

		assert.Empty(t, got)
		assert.NotNil(t, got)
		assert.Len(t, client.searchCalls, 1)
	})
}

func TestSearch_InvalidInput(t *testing.T) {
	client := NewMockMarketplaceClient()
	searcher := newTestSearcher(client)

	assert.Empty(t, searcher.Search(context.Background(), "　 ", 50))
	assert.Empty(t, searcher.Search(context.Background(), "towel", 0))
	assert.Empty(t, client.searchCalls)
}
