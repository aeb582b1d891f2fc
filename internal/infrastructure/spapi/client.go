package spapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shelfscout/backend/internal/domain"
	"github.com/shelfscout/backend/internal/logging"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// catalogIncludedData is requested for single item lookups
var catalogIncludedData = []string{"summaries", "attributes", "identifiers", "dimensions", "salesRanks"}

// Config holds Selling Partner API connection settings
type Config struct {
	ClientID          string
	ClientSecret      string
	RefreshToken      string
	Endpoint          string
	TokenURL          string
	MarketplaceID     string
	Currency          string
	RequestsPerSecond float64
	Burst             int
}

// Client handles communication with the Selling Partner API
type Client struct {
	httpClient    *http.Client
	tokens        oauth2.TokenSource
	endpoint      string
	marketplaceID string
	currency      string
	rateLimiter   *rate.Limiter
	logger        *slog.Logger
	debug         bool
}

// NewClient creates a new SP-API client. Access tokens are obtained from Login
// with Amazon using the refresh token and renewed when they expire.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if logger == nil {
		logger = logging.Discard()
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	return &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		tokens:        oauthConfig.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.RefreshToken}),
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		marketplaceID: cfg.MarketplaceID,
		currency:      cfg.Currency,
		rateLimiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:        logger,
	}
}

// SetDebug enables logging of every request URL and response status
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// apiErrors is the error body returned by SP-API operations
type apiErrors struct {
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// do executes one request. HTTP 429 maps to domain.ErrThrottled and 404 to
// domain.ErrNotFound; other failures wrap domain.ErrRemoteFailure.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("%w: access token: %v", domain.ErrRemoteFailure, err)
	}

	reqURL := c.endpoint + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "shelfscout/1.0 (Language=Go)")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-amz-access-token", token.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", domain.ErrRemoteFailure, err)
	}

	if c.debug {
		c.logger.Debug("sp-api response", "method", method, "url", reqURL, "status", resp.StatusCode, "bytes", len(respBody))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status 429: %s", domain.ErrThrottled, summarizeErrors(respBody))
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, method, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: status %d: %s", domain.ErrRemoteFailure, resp.StatusCode, summarizeErrors(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// summarizeErrors renders an SP-API error body as "Code: message; ...".
func summarizeErrors(body []byte) string {
	var parsed apiErrors
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		parts := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			parts = append(parts, e.Code+": "+e.Message)
		}
		return strings.Join(parts, "; ")
	}
	const maxLen = 200
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// GetCatalogItem retrieves summaries, attributes, identifiers, dimensions and
// sales ranks for one ASIN.
func (c *Client) GetCatalogItem(ctx context.Context, asin string) (*domain.CatalogItem, error) {
	query := url.Values{}
	query.Set("marketplaceIds", c.marketplaceID)
	query.Set("includedData", strings.Join(catalogIncludedData, ","))

	var item domain.CatalogItem
	if err := c.do(ctx, http.MethodGet, "/catalog/2022-04-01/items/"+url.PathEscape(asin), query, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// SearchCatalogItems runs one page of a keyword or identifier search.
func (c *Client) SearchCatalogItems(ctx context.Context, search domain.CatalogSearch) (*domain.CatalogSearchPage, error) {
	query := url.Values{}
	query.Set("marketplaceIds", c.marketplaceID)
	if len(search.Keywords) > 0 {
		query.Set("keywords", strings.Join(search.Keywords, ","))
	}
	if len(search.Identifiers) > 0 {
		query.Set("identifiers", strings.Join(search.Identifiers, ","))
		query.Set("identifiersType", search.IdentifiersType)
	}
	if len(search.IncludedData) > 0 {
		query.Set("includedData", strings.Join(search.IncludedData, ","))
	}
	if search.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(search.PageSize))
	}
	if search.PageToken != "" {
		query.Set("pageToken", search.PageToken)
	}

	var page domain.CatalogSearchPage
	if err := c.do(ctx, http.MethodGet, "/catalog/2022-04-01/items", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// offersResponse wraps the getItemOffers payload
type offersResponse struct {
	Payload *domain.ItemOffersPayload `json:"payload"`
}

// GetItemOffers retrieves the live new-condition offers for an ASIN.
func (c *Client) GetItemOffers(ctx context.Context, asin string) (*domain.ItemOffersPayload, error) {
	query := url.Values{}
	query.Set("MarketplaceId", c.marketplaceID)
	query.Set("ItemCondition", "New")

	var resp offersResponse
	if err := c.do(ctx, http.MethodGet, "/products/pricing/v0/items/"+url.PathEscape(asin)+"/offers", query, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Payload == nil {
		return nil, fmt.Errorf("%w: offers response without payload", domain.ErrRemoteFailure)
	}
	return resp.Payload, nil
}

type feesEstimateRequest struct {
	FeesEstimateRequest feesEstimateParams `json:"FeesEstimateRequest"`
}

type feesEstimateParams struct {
	MarketplaceID       string          `json:"MarketplaceId"`
	IsAmazonFulfilled   bool            `json:"IsAmazonFulfilled"`
	PriceToEstimateFees priceToEstimate `json:"PriceToEstimateFees"`
	Identifier          string          `json:"Identifier"`
}

type priceToEstimate struct {
	ListingPrice moneyAmount `json:"ListingPrice"`
}

// moneyAmount sends the amount as a JSON number rather than decimal's quoted form
type moneyAmount struct {
	CurrencyCode string      `json:"CurrencyCode"`
	Amount       json.Number `json:"Amount"`
}

type feesResponse struct {
	Payload *struct {
		FeesEstimateResult *domain.FeesEstimateResult `json:"FeesEstimateResult"`
	} `json:"payload"`
}

// GetFeesEstimate estimates the selling fees for an ASIN at price.
func (c *Client) GetFeesEstimate(ctx context.Context, asin string, price decimal.Decimal) (*domain.FeesEstimateResult, error) {
	body := feesEstimateRequest{
		FeesEstimateRequest: feesEstimateParams{
			MarketplaceID: c.marketplaceID,
			PriceToEstimateFees: priceToEstimate{
				ListingPrice: moneyAmount{CurrencyCode: c.currency, Amount: json.Number(price.String())},
			},
			Identifier: asin,
		},
	}

	var resp feesResponse
	if err := c.do(ctx, http.MethodPost, "/products/fees/v0/items/"+url.PathEscape(asin)+"/feesEstimate", nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.Payload == nil || resp.Payload.FeesEstimateResult == nil {
		return nil, fmt.Errorf("%w: fees response without result", domain.ErrRemoteFailure)
	}
	return resp.Payload.FeesEstimateResult, nil
}
