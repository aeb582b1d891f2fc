package keepa

import (
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
	"golang.org/x/time/rate"
)

// Client resolves seller ids to storefront names through the Keepa seller API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	domainID    int
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// sellerResponse is the subset of the /seller response we read
type sellerResponse struct {
	Sellers map[string]struct {
		SellerName string `json:"sellerName"`
	} `json:"sellers"`
	TokensLeft int `json:"tokensLeft"`
	RefillIn   int `json:"refillIn"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewClient creates a Keepa client. An empty apiKey yields a client whose
// Configured reports false.
func NewClient(apiKey, baseURL string, domainID int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	// Keepa refills tokens per minute; one seller request per second stays well inside the basic plan.
	limiter := rate.NewLimiter(rate.Limit(1), 1)

	return &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		domainID:    domainID,
		rateLimiter: limiter,
		logger:      logger,
	}
}

// Configured reports whether an API key is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// ResolveName returns the storefront name for sellerID
func (c *Client) ResolveName(ctx context.Context, sellerID string) (string, error) {
	if !c.Configured() {
		return "", domain.ErrLookupNotConfigured
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("domain", strconv.Itoa(c.domainID))
	params.Set("seller", sellerID)
	reqURL := fmt.Sprintf("%s/seller?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "shelfscout/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRemoteFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", domain.ErrRemoteFailure, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: keepa tokens exhausted", domain.ErrThrottled)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: keepa status %d", domain.ErrRemoteFailure, resp.StatusCode)
	}

	var parsed sellerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: keepa %s: %s", domain.ErrRemoteFailure, parsed.Error.Type, parsed.Error.Message)
	}

	seller, ok := parsed.Sellers[sellerID]
	if !ok || strings.TrimSpace(seller.SellerName) == "" {
		return "", fmt.Errorf("%w: seller %s", domain.ErrNotFound, sellerID)
	}

	c.logger.Debug("seller resolved", "seller", sellerID, "name", seller.SellerName, "tokens_left", parsed.TokensLeft)
	return strings.TrimSpace(seller.SellerName), nil
}
