package testreports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// PostCSV performs a POST request with a raw CSV body
func (c *HTTPClient) PostCSV(ctx context.Context, url, body string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "text/csv")
	return c.client.Do(req)
}

// marshalJSON marshals a struct to JSON
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// apiError turns a non-200 response into an error carrying the service's code.
func apiError(op string, resp *http.Response, body []byte) error {
	var envelope ErrorBody
	if err := unmarshalJSON(body, &envelope); err == nil && envelope.Code != "" {
		return fmt.Errorf("%s: HTTP %d %s: %s", op, resp.StatusCode, envelope.Code, envelope.Message)
	}
	return fmt.Errorf("%s: HTTP %d: %s", op, resp.StatusCode, string(body))
}

// fetchTopPair asks the service for the longest-working pair of a report.
func fetchTopPair(ctx context.Context, client *HTTPClient, baseURL, csv string) (TopPair, error) {
	resp, err := client.PostCSV(ctx, baseURL+"/toppair", csv)
	if err != nil {
		return TopPair{}, fmt.Errorf("toppair request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return TopPair{}, fmt.Errorf("failed to read toppair response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return TopPair{}, apiError("toppair", resp, body)
	}

	var top TopPair
	if err := unmarshalJSON(body, &top); err != nil {
		return TopPair{}, fmt.Errorf("failed to parse toppair response: %w", err)
	}

	return top, nil
}

// fetchOverlaps asks the service for the full overlap listing of a report.
func fetchOverlaps(ctx context.Context, client *HTTPClient, baseURL, csv string) (Report, error) {
	resp, err := client.PostCSV(ctx, baseURL+"/overlaps", csv)
	if err != nil {
		return Report{}, fmt.Errorf("overlaps request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read overlaps response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return Report{}, apiError("overlaps", resp, body)
	}

	var report Report
	if err := unmarshalJSON(body, &report); err != nil {
		return Report{}, fmt.Errorf("failed to parse overlaps response: %w", err)
	}

	return report, nil
}

// fetchTopPairs asks the service for the ranked pair listing of a report.
func fetchTopPairs(ctx context.Context, client *HTTPClient, baseURL, csv string, limit int) ([]Entry, error) {
	url := fmt.Sprintf("%s/toppairs?limit=%d", baseURL, limit)

	resp, err := client.PostCSV(ctx, url, csv)
	if err != nil {
		return nil, fmt.Errorf("toppairs request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read toppairs response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, apiError("toppairs", resp, body)
	}

	var entries []Entry
	if err := unmarshalJSON(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse toppairs response: %w", err)
	}

	return entries, nil
}
