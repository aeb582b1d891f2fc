package spapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shelfscout/backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves a token endpoint plus the given API handler
func newTestServer(t *testing.T, api http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/o2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "test-refresh", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "test-client", r.PostForm.Get("client_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-access","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-access", r.Header.Get("x-amz-access-token"))
		api(w, r)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		ClientID:          "test-client",
		ClientSecret:      "test-secret",
		RefreshToken:      "test-refresh",
		Endpoint:          server.URL,
		TokenURL:          server.URL + "/auth/o2/token",
		MarketplaceID:     "A1VC38T7YXB528",
		Currency:          "JPY",
		RequestsPerSecond: 100,
		Burst:             10,
	}, nil)
	return client, server
}

func TestNewClient(t *testing.T) {
	client := NewClient(Config{Endpoint: "https://example.com/", MarketplaceID: "A1VC38T7YXB528"}, nil)

	assert.Equal(t, "https://example.com", client.endpoint)
	assert.NotNil(t, client.rateLimiter)
	assert.NotNil(t, client.logger)
}

func TestGetCatalogItem(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/catalog/2022-04-01/items/B0TESTASIN", r.URL.Path)
		assert.Equal(t, "A1VC38T7YXB528", r.URL.Query().Get("marketplaceIds"))
		assert.Contains(t, r.URL.Query().Get("includedData"), "salesRanks")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"asin": "B0TESTASIN",
			"summaries": [{"marketplaceId": "A1VC38T7YXB528", "itemName": "Towel", "brand": "Imabari"}],
			"salesRanks": [{"marketplaceId": "A1VC38T7YXB528", "classificationRanks": [{"title": "Towels", "rank": 42}]}]
		}`))
	})

	item, err := client.GetCatalogItem(context.Background(), "B0TESTASIN")

	require.NoError(t, err)
	assert.Equal(t, "B0TESTASIN", item.ASIN)
	require.Len(t, item.Summaries, 1)
	assert.Equal(t, "Towel", item.Summaries[0].ItemName)
	rank, title, ok := FirstRank(item.SalesRanks)
	assert.True(t, ok)
	assert.Equal(t, 42, rank)
	assert.Equal(t, "Towels", title)
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "throttled",
			status:  http.StatusTooManyRequests,
			body:    `{"errors":[{"code":"QuotaExceeded","message":"You exceeded your quota for the requested resource."}]}`,
			wantErr: domain.ErrThrottled,
			wantMsg: "QuotaExceeded",
		},
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    `{"errors":[{"code":"NotFound","message":"Requested item not found"}]}`,
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `upstream exploded`,
			wantErr: domain.ErrRemoteFailure,
			wantMsg: "upstream exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.GetCatalogItem(context.Background(), "B0TESTASIN")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestSearchCatalogItems(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/catalog/2022-04-01/items", r.URL.Path)
		assert.Equal(t, "bath towel", q.Get("keywords"))
		assert.Equal(t, "20", q.Get("pageSize"))
		assert.Equal(t, "tok1", q.Get("pageToken"))
		assert.Empty(t, q.Get("identifiers"))

		_, _ = w.Write([]byte(`{"numberOfResults": 2, "pagination": {"nextToken": "tok2"}, "items": [{"asin": "B0A"}, {"asin": "B0B"}]}`))
	})

	page, err := client.SearchCatalogItems(context.Background(), domain.CatalogSearch{
		Keywords:  []string{"bath towel"},
		PageSize:  20,
		PageToken: "tok1",
	})

	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, "tok2", page.NextToken())
}

func TestSearchCatalogItems_Identifiers(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "4901234567894", q.Get("identifiers"))
		assert.Equal(t, "EAN", q.Get("identifiersType"))
		assert.Empty(t, q.Get("keywords"))

		_, _ = w.Write([]byte(`{"numberOfResults": 0, "items": []}`))
	})

	page, err := client.SearchCatalogItems(context.Background(), domain.CatalogSearch{
		Identifiers:     []string{"4901234567894"},
		IdentifiersType: "EAN",
		PageSize:        1,
	})

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.NextToken())
}

func TestGetItemOffers(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/pricing/v0/items/B0TESTASIN/offers", r.URL.Path)
		assert.Equal(t, "New", r.URL.Query().Get("ItemCondition"))
		assert.Equal(t, "A1VC38T7YXB528", r.URL.Query().Get("MarketplaceId"))

		_, _ = w.Write([]byte(`{"payload": {"ASIN": "B0TESTASIN", "status": "Success", "Offers": [
			{"SellerId": "A1X", "IsBuyBoxWinner": true,
			 "ListingPrice": {"CurrencyCode": "JPY", "Amount": 1980.0},
			 "Shipping": {"CurrencyCode": "JPY", "Amount": 0},
			 "Points": {"PointsNumber": 20}}
		]}}`))
	})

	payload, err := client.GetItemOffers(context.Background(), "B0TESTASIN")

	require.NoError(t, err)
	offers := ExtractOffers(payload)
	require.Len(t, offers, 1)
	assert.Equal(t, "A1X", offers[0].SellerID)
	assert.True(t, offers[0].IsBuyBox)
	assert.True(t, offers[0].Total().Equal(decimal.NewFromInt(1980)))
	assert.Equal(t, 20, offers[0].Points)
}

func TestGetItemOffers_MissingPayload(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.GetItemOffers(context.Background(), "B0TESTASIN")

	assert.ErrorIs(t, err, domain.ErrRemoteFailure)
}

func TestGetFeesEstimate(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products/fees/v0/items/B0TESTASIN/feesEstimate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		req := body["FeesEstimateRequest"].(map[string]any)
		assert.Equal(t, "A1VC38T7YXB528", req["MarketplaceId"])
		assert.Equal(t, "B0TESTASIN", req["Identifier"])
		price := req["PriceToEstimateFees"].(map[string]any)["ListingPrice"].(map[string]any)
		assert.Equal(t, "JPY", price["CurrencyCode"])
		assert.Equal(t, float64(2000), price["Amount"], "amount is sent as a JSON number")

		_, _ = w.Write([]byte(`{"payload": {"FeesEstimateResult": {"Status": "Success", "FeesEstimate": {
			"FeeDetailList": [{"FeeType": "ReferralFee", "FeeAmount": {"CurrencyCode": "JPY", "Amount": 200}}]
		}}}}`))
	})

	result, err := client.GetFeesEstimate(context.Background(), "B0TESTASIN", decimal.NewFromInt(2000))

	require.NoError(t, err)
	fee, ok := ExtractReferralFee(result)
	assert.True(t, ok)
	assert.True(t, fee.Equal(decimal.NewFromInt(200)))
}

func TestSummarizeErrors(t *testing.T) {
	assert.Equal(t, "A: one; B: two", summarizeErrors([]byte(`{"errors":[{"code":"A","message":"one"},{"code":"B","message":"two"}]}`)))
	assert.Equal(t, "plain text", summarizeErrors([]byte("  plain text \n")))
	assert.Len(t, summarizeErrors(make([]byte, 500)), 200)
}
