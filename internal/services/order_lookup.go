package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"godown/internal/common"
)

// OrderStatus is the slice of the upstream order record the classifier needs.
// CustomStatus carries the fulfilment-side label the routing rules match on.
type OrderStatus struct {
	Name         string `json:"name"`
	CustomStatus string `json:"custom_status"`
}

// OrderStatusLookup resolves a (store, order) pair against the order
// management system. A missing order returns (nil, nil).
type OrderStatusLookup interface {
	Lookup(ctx context.Context, storeID, orderID string) (*OrderStatus, error)
}

type httpOrderStatusLookup struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPOrderStatusLookup(baseURL, apiKey string) OrderStatusLookup {
	return &httpOrderStatusLookup{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (l *httpOrderStatusLookup) Lookup(ctx context.Context, storeID, orderID string) (*OrderStatus, error) {
	endpoint := fmt.Sprintf("%s/stores/%s/orders/%s", l.baseURL, url.PathEscape(storeID), url.PathEscape(orderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order lookup failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, common.Validationf("order lookup returned status %d for order %s", resp.StatusCode, orderID)
	}

	status := &OrderStatus{}
	if err := json.NewDecoder(resp.Body).Decode(status); err != nil {
		return nil, fmt.Errorf("order lookup response decode failed: %w", err)
	}
	return status, nil
}
