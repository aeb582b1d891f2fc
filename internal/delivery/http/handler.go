package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shelfscout/backend/internal/delivery/csvexport"
	"github.com/shelfscout/backend/internal/domain"
	"github.com/shelfscout/backend/internal/usecase"
)

// maxSearchResults caps the max query parameter of keyword searches
const maxSearchResults = 500

// ProductDetailer aggregates product records and resolves barcodes
type ProductDetailer interface {
	AggregateDetail(ctx context.Context, asin string) *domain.ProductRecord
	ResolveIdentifier(ctx context.Context, barcode string) (string, bool)
}

// KeywordSearcher turns a keyword query into ranked ASINs
type KeywordSearcher interface {
	Search(ctx context.Context, query string, maxResults int) []string
}

// BatchRunner runs a whole identifier or keyword batch
type BatchRunner interface {
	Run(ctx context.Context, req usecase.BatchRequest, onRecord func(*domain.ProductRecord)) (*usecase.BatchResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	products          ProductDetailer
	searcher          KeywordSearcher
	batch             BatchRunner
	defaultMaxResults int
}

// NewHandler creates a new HTTP handler
func NewHandler(products ProductDetailer, searcher KeywordSearcher, batch BatchRunner, defaultMaxResults int) *Handler {
	if defaultMaxResults <= 0 {
		defaultMaxResults = 50
	}
	return &Handler{
		products:          products,
		searcher:          searcher,
		batch:             batch,
		defaultMaxResults: defaultMaxResults,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "shelfscout-backend",
		"version": "1.0.0",
	})
}

// GetProduct aggregates one ASIN. The record is returned even when every
// remote stage missed; its optional fields show what was found.
func (h *Handler) GetProduct(c *gin.Context) {
	asin, ok := singleIdentifier(c.Param("asin"), usecase.KindASIN)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ASIN"})
		return
	}

	c.JSON(http.StatusOK, h.products.AggregateDetail(c.Request.Context(), asin))
}

// ResolveIdentifier maps a JAN/EAN barcode to an ASIN
func (h *Handler) ResolveIdentifier(c *gin.Context) {
	barcode, ok := singleIdentifier(c.Param("barcode"), usecase.KindJAN)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JAN/EAN barcode"})
		return
	}

	asin, found := h.products.ResolveIdentifier(c.Request.Context(), barcode)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no product for barcode", "barcode": barcode})
		return
	}

	c.JSON(http.StatusOK, gin.H{"barcode": barcode, "asin": asin})
}

// SearchKeywords returns ASINs for a keyword query ordered by sales rank
func (h *Handler) SearchKeywords(c *gin.Context) {
	query := usecase.NormalizeKeywords(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	maxResults := h.defaultMaxResults
	if raw := c.Query("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSearchResults {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max must be between 1 and 500"})
			return
		}
		maxResults = n
	}

	asins := h.searcher.Search(c.Request.Context(), query, maxResults)
	c.JSON(http.StatusOK, gin.H{"query": query, "asins": asins, "count": len(asins)})
}

// RunBatch aggregates a list of identifiers or the results of a keyword
// search. With ?format=csv rows are streamed as they are produced.
func (h *Handler) RunBatch(c *gin.Context) {
	var req usecase.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.MaxResults > maxSearchResults {
		c.JSON(http.StatusBadRequest, gin.H{"error": "maxResults must not exceed 500"})
		return
	}

	if c.Query("format") == "csv" {
		h.runBatchCSV(c, req)
		return
	}

	result, err := h.batch.Run(c.Request.Context(), req, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) runBatchCSV(c *gin.Context, req usecase.BatchRequest) {
	var (
		writer   *csvexport.Writer
		writeErr error
	)
	// Headers are sent with the first row so validation errors can still be JSON.
	start := func() {
		if writer != nil || writeErr != nil {
			return
		}
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="shelfscout.csv"`)
		c.Status(http.StatusOK)
		writer, writeErr = csvexport.NewWriter(c.Writer)
	}

	_, err := h.batch.Run(c.Request.Context(), req, func(r *domain.ProductRecord) {
		start()
		if writeErr == nil {
			writeErr = writer.Write(r)
			c.Writer.Flush()
		}
	})
	if err != nil {
		writeError(c, err)
		return
	}

	// Header row even when nothing was aggregated
	start()
	if writeErr != nil {
		_ = c.Error(writeErr)
	}
}

// singleIdentifier parses raw as exactly one identifier of the wanted kind
func singleIdentifier(raw string, want usecase.IdentifierKind) (string, bool) {
	ids := usecase.ParseIdentifiers(raw)
	if len(ids) != 1 || ids[0].Kind != want {
		return "", false
	}
	return ids[0].Value, true
}

// writeError maps domain errors to HTTP responses
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
