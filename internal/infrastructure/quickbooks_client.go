package infrastructure

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"qb_bulkdelete/internal/entities"
)

// upstreamTimeout bounds every QuickBooks API call.
const upstreamTimeout = 30 * time.Second

// QuickBooksClient dispatches wire requests built by the translator.
// It does no interpretation of the response — that is the normalizer's job.
type QuickBooksClient struct {
	httpClient *http.Client
}

func NewQuickBooksClient() *QuickBooksClient {
	return &QuickBooksClient{
		httpClient: &http.Client{Timeout: upstreamTimeout},
	}
}

func (c *QuickBooksClient) Do(ctx context.Context, wr *entities.WireRequest) (*entities.WireResponse, error) {
	var body io.Reader
	if len(wr.Body) > 0 {
		body = bytes.NewReader(wr.Body)
	}

	req, err := http.NewRequestWithContext(ctx, wr.Method, wr.URL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range wr.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &entities.WireResponse{StatusCode: resp.StatusCode, Body: respBody}, nil
}
