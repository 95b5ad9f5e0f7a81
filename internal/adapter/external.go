package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"estatecore/internal/model"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// ExternalListingsAdapter calls a third-party property listings API. The
// source is entirely optional: when disabled or persistently failing it
// degrades to an empty result set, never an error.
type ExternalListingsAdapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	enabled    bool
	timeout    time.Duration
	maxRetries int
}

func NewExternalListingsAdapter(baseURL, apiKey string, logger *zap.Logger, enabled bool, timeout time.Duration, maxRetries int) *ExternalListingsAdapter {
	return &ExternalListingsAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		enabled:    enabled,
		timeout:    timeout,
		maxRetries: maxRetries,
	}
}

func (a *ExternalListingsAdapter) Source() model.Source {
	return model.SourceListings
}

// externalListing is one entry of the API's `data` envelope.
type externalListing struct {
	ID           json.Number `json:"id"`
	Title        string      `json:"title"`
	Price        *float64    `json:"price,omitempty"`
	Bedrooms     *int        `json:"bedrooms,omitempty"`
	Bathrooms    *int        `json:"bathrooms,omitempty"`
	Location     *string     `json:"location,omitempty"`
	PropertyType *string     `json:"property_type,omitempty"`
	URL          *string     `json:"url,omitempty"`
}

type listingsEnvelope struct {
	Data []externalListing `json:"data"`
}

func (a *ExternalListingsAdapter) Fetch(ctx context.Context, query *model.AnalyzedQuery, limit int) ([]model.ContextItem, model.SourceStatus) {
	if !a.enabled {
		return nil, model.StatusDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	listings, err := a.fetchWithRetry(ctx, query.Params, limit)
	if err != nil {
		status := model.StatusError
		if errors.Is(err, context.DeadlineExceeded) {
			status = model.StatusTimeout
		}
		a.logger.Warn("external listings fetch failed",
			zap.String("source", string(a.Source())),
			zap.Error(err))
		return nil, status
	}
	if len(listings) == 0 {
		return nil, model.StatusEmpty
	}

	items := make([]model.ContextItem, 0, len(listings))
	for i, l := range listings {
		meta := map[string]any{"listing_id": l.ID.String()}
		if l.Price != nil {
			meta["price"] = *l.Price
		}
		if l.Location != nil {
			meta["location"] = *l.Location
		}
		if l.URL != nil {
			meta["url"] = *l.URL
		}
		items = append(items, model.ContextItem{
			Source:         model.SourceListings,
			Content:        formatListing(l),
			RelevanceScore: rankScore(i, len(listings)),
			Metadata:       meta,
		})
	}
	return items, model.StatusOK
}

// fetchWithRetry calls the API with exponential backoff on transient
// failures only. Client errors (4xx) and malformed payloads are permanent.
func (a *ExternalListingsAdapter) fetchWithRetry(ctx context.Context, params *model.QueryParams, limit int) ([]externalListing, error) {
	reqURL := a.baseURL + "/listings?" + buildQuery(params, limit)

	var listings []externalListing
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if a.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+a.apiKey)
		}

		resp, err := a.httpClient.Do(req)
		if err != nil {
			// transport/timeout errors are the transient class we retry
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("listings API returned status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("listings API returned status %d: %s", resp.StatusCode, string(body)))
		}

		var envelope listingsEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return backoff.Permanent(fmt.Errorf("malformed listings response: %w", err))
		}
		listings = envelope.Data
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(a.maxRetries-1)), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return listings, nil
}

// buildQuery maps extracted constraints onto the external API's parameter
// names.
func buildQuery(params *model.QueryParams, limit int) string {
	values := url.Values{}
	if params != nil {
		if params.Location != nil {
			values.Set("location", *params.Location)
		}
		if params.PropertyType != nil {
			values.Set("type", *params.PropertyType)
		}
		if params.PriceMin != nil {
			values.Set("min_price", strconv.FormatFloat(*params.PriceMin, 'f', 0, 64))
		}
		if params.PriceMax != nil {
			values.Set("max_price", strconv.FormatFloat(*params.PriceMax, 'f', 0, 64))
		}
		if params.Bedrooms != nil {
			values.Set("beds", strconv.Itoa(*params.Bedrooms))
		}
		if params.Bathrooms != nil {
			values.Set("baths", strconv.Itoa(*params.Bathrooms))
		}
	}
	values.Set("limit", strconv.Itoa(limit))
	return values.Encode()
}

// formatListing renders one external listing into prompt-ready text.
func formatListing(l externalListing) string {
	var b strings.Builder
	if l.Bedrooms != nil {
		if *l.Bedrooms == 0 {
			b.WriteString("Studio")
		} else {
			fmt.Fprintf(&b, "%dBR", *l.Bedrooms)
		}
	} else {
		b.WriteString("Listing")
	}
	if l.PropertyType != nil {
		fmt.Fprintf(&b, " %s", *l.PropertyType)
	}
	if l.Location != nil {
		fmt.Fprintf(&b, " in %s", *l.Location)
	}
	if l.Price != nil {
		fmt.Fprintf(&b, " — AED %.0f", *l.Price)
	}
	if l.Bathrooms != nil {
		fmt.Fprintf(&b, ", %d bath", *l.Bathrooms)
	}
	if l.Title != "" {
		fmt.Fprintf(&b, ". %s", l.Title)
	}
	b.WriteString(" (live external listing)")
	return b.String()
}
