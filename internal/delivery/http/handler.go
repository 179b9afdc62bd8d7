package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/storefront/backend/internal/domain"
)

const (
	serviceName    = "storefront-search"
	serviceVersion = "1.0.0"
)

// SearchUsecase runs product searches
type SearchUsecase interface {
	Search(ctx context.Context, request *domain.SearchRequest) (*domain.SearchResponse, error)
}

// CatalogUsecase reports on and reloads the served catalog
type CatalogUsecase interface {
	Info() domain.CatalogInfo
	Refresh(ctx context.Context) (domain.CatalogInfo, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searchService  SearchUsecase
	catalogService CatalogUsecase
	logger         *logrus.Entry
}

// NewHandler creates a new HTTP handler. Either service may be nil, in
// which case its endpoints answer 503.
func NewHandler(searchService SearchUsecase, catalogService CatalogUsecase, logger *logrus.Entry) *Handler {
	if logger == nil {
		logger = logrus.WithField("component", "http_handler")
	}
	return &Handler{
		searchService:  searchService,
		catalogService: catalogService,
		logger:         logger,
	}
}

// HealthCheck returns the health status of the API and the served catalog
func (h *Handler) HealthCheck(c *gin.Context) {
	response := gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	}
	if h.catalogService != nil {
		response["catalog"] = h.catalogService.Info()
	}
	c.JSON(http.StatusOK, response)
}

// Search handles GET /api/v1/search
func (h *Handler) Search(c *gin.Context) {
	if h.searchService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "search service not configured",
		})
		return
	}

	request, err := parseSearchRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	response, err := h.searchService.Search(c.Request.Context(), request)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		h.logger.WithError(err).WithField("query", request.Query).Error("Search failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "search failed",
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// RefreshCatalog handles POST /api/v1/catalog/refresh
func (h *Handler) RefreshCatalog(c *gin.Context) {
	if h.catalogService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "catalog service not configured",
		})
		return
	}

	info, err := h.catalogService.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "failed to refresh catalog",
			"details": err.Error(),
			"catalog": info,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"catalog": info,
	})
}

// parseSearchRequest reads search parameters from the query string. List
// parameters may be repeated or comma separated.
func parseSearchRequest(c *gin.Context) (*domain.SearchRequest, error) {
	request := &domain.SearchRequest{
		Query:   c.Query("q"),
		Sort:    c.Query("sort"),
		Brands:  listParam(c, "brands"),
		Genders: listParam(c, "genders"),
		Types:   listParam(c, "types"),
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("limit must be a non-negative integer, got %q", raw)
		}
		request.Limit = limit
	}

	if raw := c.Query("request_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("request_id must be a non-negative integer, got %q", raw)
		}
		request.RequestID = id
	}

	var err error
	if request.MinPrice, err = priceParam(c, "min_price"); err != nil {
		return nil, err
	}
	if request.MaxPrice, err = priceParam(c, "max_price"); err != nil {
		return nil, err
	}

	return request, nil
}

func listParam(c *gin.Context, name string) []string {
	var values []string
	for _, raw := range c.QueryArray(name) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

func priceParam(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 {
		return nil, fmt.Errorf("%s must be a non-negative number, got %q", name, raw)
	}
	return &price, nil
}
